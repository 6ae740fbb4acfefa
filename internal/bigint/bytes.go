package bigint

// AppendTwosComplement appends the minimal little-endian two's-complement
// encoding of x to dst and returns the extended slice. The most significant
// appended byte always carries the sign in its top bit:
//
//	0 -> 00, -1 -> FF, 255 -> FF 00, 128 -> 80 00, -128 -> 80
func AppendTwosComplement(dst []byte, x Int) []byte {
	start := len(dst)
	for _, w := range x.Magnitude() {
		dst = append(dst, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	img := dst[start:]

	negative := x.Sign() < 0
	signByte := byte(0x00)
	if negative {
		signByte = 0xFF
		carry := 1
		for i := range img {
			v := int(^img[i]) + carry
			img[i] = byte(v)
			carry = v >> 8
		}
	}
	dst = append(dst, signByte)

	// drop redundant sign bytes
	n := len(dst)
	for n-start > 1 && dst[n-1] == signByte && (dst[n-2]&0x80 != 0) == negative {
		n--
	}
	return dst[:n]
}
