package lzh

import "github.com/sigurn/crc16"

// Checksum accumulates a running check value over expanded bytes.
type Checksum interface {
	Reset()
	Update(b byte)
	UpdateBytes(p []byte)
	Value() uint32
}

// crc16Table is CRC-16/ARC: reflected x^16 + x^15 + x^2 + 1, initial value 0, the
// check value stored in LHA headers.
var crc16Table = crc16.MakeTable(crc16.CRC16_ARC)

// CRC16 is the LHA CRC-16.
type CRC16 struct {
	crc uint16 // Register in crc16 package form; Sum16 completes it.
	one [1]byte
}

// NewCRC16 returns a zeroed CRC16.
func NewCRC16() *CRC16 {
	return &CRC16{crc: crc16.Init(crc16Table)}
}

// Reset clears the value.
func (c *CRC16) Reset() {
	c.crc = crc16.Init(crc16Table)
}

// Update adds one byte.
func (c *CRC16) Update(b byte) {
	c.one[0] = b
	c.crc = crc16.Update(c.crc, c.one[:], crc16Table)
}

// UpdateBytes adds p.
func (c *CRC16) UpdateBytes(p []byte) {
	c.crc = crc16.Update(c.crc, p, crc16Table)
}

// Write implements io.Writer. It never fails.
func (c *CRC16) Write(p []byte) (int, error) {
	c.UpdateBytes(p)

	return len(p), nil
}

// Value returns the current value.
func (c *CRC16) Value() uint32 {
	return uint32(c.Sum16())
}

// Sum16 returns the current value as stored in LHA headers.
func (c *CRC16) Sum16() uint16 {
	return crc16.Complete(c.crc, crc16Table)
}
