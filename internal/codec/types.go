package codec

// Transforms a single block payload in either direction
type Codec interface {
	Name() string
	Compress(src []byte) (out []byte, err error)
	Decompress(src []byte) (out []byte, err error)
}

const (
	NameGzip   string = "gzip"
	NameZstd   string = "zstd"
	NameLZ4    string = "lz4"
	NameSnappy string = "snappy"
	NameBrotli string = "brotli"
	NameAuto   string = "auto"
)
