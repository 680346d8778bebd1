/*
Package lzh implements the token codecs of the LHA/LZH compression methods
-lh1-, -lh2-, -lzs- and -lz5-.

A codec converts LZSS tokens, already chosen by a match finder, into the bit-exact
stream of one method and back. Codes are literal bytes (0..255) or
LiteralCodes+length-Threshold for matches; every match code is followed by its offset.

	-lh1-  4 KiB window, lengths 3..60, adaptive Huffman codes,
	       offsets as a static code for the high 6 bits plus 6 raw bits.
	-lh2-  8 KiB window, lengths 3..256, adaptive Huffman codes with an 8-bit escape,
	       offsets through a second adaptive tree that grows with the output.
	-lzs-  2 KiB window, lengths 2..17, flag bit plus fixed-width fields.
	-lz5-  4 KiB window, lengths 3..18, flag byte per 8 tokens, byte-aligned fields.

Packages bitio and huffman hold the bit stream and the static and adaptive Huffman
coders the methods are built on.

Use NewEncoder/NewDecoder for token-level access, CompressTokens to encode a token list,
NewReader to expand a decoder into bytes and Decompress for whole buffers.

# Examples

Encode tokens:

	out, err := lzh.CompressTokens(lzh.MethodLH1, []lzh.Token{
		lzh.Literal('a'), lzh.Literal('b'), lzh.Match(4, 1),
	}, nil)
	if err != nil {
		return err
	}

Expand a buffer of known size ("ababab"):

	data, err := lzh.Decompress(lzh.MethodLH1, out, 6, nil)
	if err != nil {
		return err
	}

Stream tokens with explicit call order:

	enc, err := lzh.NewEncoder(lzh.MethodLZ5, w, nil)
	if err != nil {
		return err
	}
	d := enc.Descriptor()
	if err := enc.WriteCode(d.MatchCode(5)); err != nil {
		return err
	}
	if err := enc.WriteOffset(0); err != nil {
		return err
	}
	return enc.Close()

Verify the CRC-16 of expanded data:

	crc := lzh.NewCRC16()
	opts := &lzh.Options{Checksum: crc}
	data, err := lzh.Decompress(lzh.MethodLH2, src, size, opts)
	if err == nil && uint16(crc.Value()) != headerCRC {
		return errBadCRC
	}
*/
package lzh
