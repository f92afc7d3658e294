package pool

// Decides pool direction for one evaluation period
func Decide(snap Snapshot) (decision Decision) {
	if snap.Cancelled {
		return
	}

	backlogged := snap.Live*snap.BlocksPerWorker < snap.Depth
	if backlogged && snap.Live < snap.MaxLive && snap.CPULoad < snap.CPUCeiling {
		decision = ScaleUp
		return
	}

	if snap.Live > 1 {
		// Near the tail the remaining work drains faster than a stop/start cycle
		if snap.Remaining <= uint64(snap.BlocksPerWorker*snap.Live) {
			return
		}
		decision = ScaleDown
	}
	return
}

func (decision Decision) String() (name string) {
	switch decision {
	case ScaleUp:
		name = "scale up"
	case ScaleDown:
		name = "scale down"
	default:
		name = "hold"
	}
	return
}
