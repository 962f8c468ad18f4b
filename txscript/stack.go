// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// The script stack holds raw byte strings; integer, boolean, and hash
// interpretations are view functions on those bytes rather than a
// runtime-tagged value, matching the "dynamic-typed stacks" design note.

// asBool interprets the top-of-stack encoding rules: a value is false iff
// it is the empty string or a string of zero bytes, where the last byte
// may additionally be 0x80 (negative zero).
func asBool(v []byte) bool {
	for i := range v {
		if v[i] != 0 {
			if i == len(v)-1 && v[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// fromBool returns the canonical encoding of a boolean value on the stack.
func fromBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return nil
}

// stack represents the primitive data stack used by the scripting engine,
// shared in implementation between the main stack and the alt stack.
type stack struct {
	stk [][]byte
}

func (s *stack) Depth() int32 {
	return int32(len(s.stk))
}

func (s *stack) PushByteArray(so []byte) {
	s.stk = append(s.stk, so)
}

func (s *stack) PushInt(val ScriptNum) {
	s.PushByteArray(val.Bytes())
}

func (s *stack) PushBool(val bool) {
	s.PushByteArray(fromBool(val))
}

func (s *stack) PopByteArray() ([]byte, error) {
	return s.nipN(0)
}

func (s *stack) PopInt(scriptNumLen int) (ScriptNum, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}
	return MakeScriptNum(so, true, scriptNumLen)
}

func (s *stack) PopBool() (bool, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

func (s *stack) PeekByteArray(idx int32) ([]byte, error) {
	sz := int32(len(s.stk))
	if idx < 0 || idx >= sz {
		return nil, scriptError(ErrInvalidStackOperation, "stack index out of range")
	}
	return s.stk[sz-idx-1], nil
}

func (s *stack) PeekInt(idx int32, scriptNumLen int) (ScriptNum, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return 0, err
	}
	return MakeScriptNum(so, true, scriptNumLen)
}

func (s *stack) PeekBool(idx int32) (bool, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

func (s *stack) nipN(idx int32) ([]byte, error) {
	sz := int32(len(s.stk))
	if idx < 0 || idx >= sz {
		return nil, scriptError(ErrInvalidStackOperation, "stack index out of range")
	}
	so := s.stk[sz-idx-1]
	if idx == 0 {
		s.stk = s.stk[:sz-1]
	} else if idx == sz-1 {
		s1 := make([][]byte, sz-1)
		copy(s1, s.stk[1:])
		s.stk = s1
	} else {
		s1 := s.stk[sz-idx : sz]
		s.stk = s.stk[:sz-idx-1]
		s.stk = append(s.stk, s1...)
	}
	return so, nil
}

func (s *stack) NipN(idx int32) error {
	_, err := s.nipN(idx)
	return err
}

func (s *stack) Tuck() error {
	so2, err := s.PopByteArray()
	if err != nil {
		return err
	}
	so1, err := s.PopByteArray()
	if err != nil {
		return err
	}
	s.PushByteArray(so2)
	s.PushByteArray(so1)
	s.PushByteArray(so2)
	return nil
}

func (s *stack) DropN(n int32) error {
	return s.nipNDrop(n)
}

func (s *stack) nipNDrop(n int32) error {
	for ; n > 0; n-- {
		if err := s.NipN(n - 1); err != nil {
			return err
		}
	}
	return nil
}

func (s *stack) DupN(n int32) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "n must be >= 1")
	}
	for ; n > 0; n-- {
		so, err := s.PeekByteArray(n - 1)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

func (s *stack) RotN(n int32) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "n must be >= 1")
	}
	entry := 3 * (n - 1)
	for ; n > 0; n-- {
		so, err := s.nipN(entry + 2)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

func (s *stack) SwapN(n int32) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "n must be >= 1")
	}
	entry := n - 1
	for ; n > 0; n-- {
		so, err := s.nipN(entry + 1)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

func (s *stack) OverN(n int32) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "n must be >= 1")
	}
	entry := 2*n - 1
	for ; n > 0; n-- {
		so, err := s.PeekByteArray(entry)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

func (s *stack) PickN(n int32) error {
	so, err := s.PeekByteArray(n)
	if err != nil {
		return err
	}
	s.PushByteArray(so)
	return nil
}

func (s *stack) RollN(n int32) error {
	so, err := s.nipN(n)
	if err != nil {
		return err
	}
	s.PushByteArray(so)
	return nil
}
