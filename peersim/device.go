package peersim

// RegisterFile is a register-addressed device in the 24Cxx EEPROM style: a
// write's first payload byte sets the register pointer and any remaining
// bytes are stored from there, reads return consecutive registers from the
// pointer. The pointer survives messages without STOP, so a
// write-then-read combined transfer reads from the just-set address.
type RegisterFile struct {
	mem []byte
	ptr int
}

// NewRegisterFile builds a register file of the given size, minimum 1.
func NewRegisterFile(size int) *RegisterFile {
	if size < 1 {
		size = 1
	}
	return &RegisterFile{mem: make([]byte, size)}
}

func (r *RegisterFile) Write(data []byte, stop bool) error {
	if len(data) == 0 {
		return nil
	}
	r.ptr = int(data[0]) % len(r.mem)
	for _, b := range data[1:] {
		r.mem[r.ptr] = b
		r.ptr = (r.ptr + 1) % len(r.mem)
	}
	return nil
}

func (r *RegisterFile) Read(buf []byte, stop bool) error {
	for i := range buf {
		buf[i] = r.mem[r.ptr]
		r.ptr = (r.ptr + 1) % len(r.mem)
	}
	return nil
}
