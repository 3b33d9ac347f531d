package sim

import "time"

// IntrabarPath 生成 K 线内部的确定性价格路径，用于判断挂单是否被触及。
// 种子取 (分钟时间戳 XOR 42)，偶数先走高点，奇数先走低点；同样输入永远得到同样路径。
func IntrabarPath(open, high, low, close float64, ts time.Time) [7]float64 {
	seed := floorMinute(ts.UnixMilli()) ^ 42
	if seed&1 == 0 {
		return [7]float64{open, (open + high) / 2, high, (high + low) / 2, low, (low + close) / 2, close}
	}
	return [7]float64{open, (open + low) / 2, low, (low + high) / 2, high, (high + close) / 2, close}
}

// floorMinute 向下取整到分钟，1970 年以前的时间戳同样向负方向取整。
func floorMinute(ms int64) int64 {
	m := ms / 60000
	if ms%60000 != 0 && ms < 0 {
		m--
	}
	return m
}

func pathExtremes(path [7]float64) (lo, hi float64) {
	lo, hi = path[0], path[0]
	for _, p := range path[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return lo, hi
}
