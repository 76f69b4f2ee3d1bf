package histogram

// ISqrt returns floor(sqrt(n)) using the binary digit-by-digit method.
func ISqrt(n uint32) uint32 {
	op := n
	var res uint32
	one := uint32(1) << 30

	for one > op {
		one >>= 2
	}
	for one != 0 {
		if op >= res+one {
			op -= res + one
			res += 2 * one
		}
		res >>= 1
		one >>= 2
	}
	return res
}
