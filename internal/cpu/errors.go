package cpu

import "fmt"

// InvalidOpcodeError is returned by Step when the decoder encounters one of
// the eleven bytes the SM83 leaves undefined. Bytes holds the opcode and,
// for a CB-prefixed decode, the 0xCB lead byte (CB itself never decodes to
// an invalid instruction, so len(Bytes) is always 1 in practice).
type InvalidOpcodeError struct {
	Bytes []byte
	PC    uint16
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %#02x at pc=%#04x", e.Bytes, e.PC)
}

var invalidOpcodes = map[byte]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}
