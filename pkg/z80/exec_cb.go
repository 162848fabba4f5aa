package z80

// bitOp applies CB-group operation x (rotate/shift, BIT, RES, SET) with y
// as sub-op or bit number. xy feeds the undocumented flag bits of BIT.
// The second result is false for BIT, which writes nothing back.
func (e *Emulator) bitOp(x, y, v, xy uint8) (uint8, bool) {
	switch x {
	case 0:
		return e.r.Rotate(y, v), true
	case 1:
		e.r.Bit(y, v, xy)
		return v, false
	case 2:
		return v &^ (1 << y), true
	}
	return v | (1 << y), true
}

// execCB executes the byte after an unprefixed CB.
func (e *Emulator) execCB(op uint8) {
	x, y, z := op>>6, (op>>3)&7, op&7
	if z != 6 {
		v := e.get8(z, false)
		if res, store := e.bitOp(x, y, v, v); store {
			e.set8(z, false, res)
		}
		return
	}
	addr := e.r.HL()
	e.read(addr, func(v uint8) {
		e.internal(1, func() {
			if res, store := e.bitOp(x, y, v, e.r.H); store {
				e.write(addr, res, nil)
			}
		})
	})
}

// execIndexedCB handles DD CB d op and FD CB d op. Neither d nor op is an
// M1 fetch, so R advances only for the two prefix bytes. Register
// encodings other than (HL) also receive a copy of the result.
func (e *Emulator) execIndexedCB() {
	e.readPC(func(d uint8) {
		e.readPC(func(op uint8) {
			e.internal(2, func() {
				addr := e.hl() + uint16(int8(d))
				x, y, z := op>>6, (op>>3)&7, op&7
				e.read(addr, func(v uint8) {
					e.internal(1, func() {
						res, store := e.bitOp(x, y, v, uint8(addr>>8))
						if !store {
							return
						}
						e.write(addr, res, func() {
							if z != 6 {
								e.set8(z, false, res)
							}
						})
					})
				})
			})
		})
	})
}
