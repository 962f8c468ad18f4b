// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// Opcode values. Most of this table mirrors the reference Bitcoin-family
// script language (spec.md §4.2); OP_TYPE and OP_CHECKOUTPUT repurpose two
// of the upstream NOP reservations to add the transaction-introspection
// primitives the covenant model is built on, and OP_BLAKE160/OP_BLAKE256/
// OP_SHA3/OP_KECCAK claim four bytes out of the range upstream leaves
// permanently invalid.
const (
	OP_0       = 0x00
	OP_FALSE   = 0x00
	OP_DATA_1  = 0x01
	OP_DATA_75 = 0x4b
	OP_PUSHDATA1 = 0x4c
	OP_PUSHDATA2 = 0x4d
	OP_PUSHDATA4 = 0x4e
	OP_1NEGATE   = 0x4f
	OP_RESERVED  = 0x50
	OP_1         = 0x51
	OP_TRUE      = 0x51
	OP_2         = 0x52
	OP_3         = 0x53
	OP_4         = 0x54
	OP_5         = 0x55
	OP_6         = 0x56
	OP_7         = 0x57
	OP_8         = 0x58
	OP_9         = 0x59
	OP_10        = 0x5a
	OP_11        = 0x5b
	OP_12        = 0x5c
	OP_13        = 0x5d
	OP_14        = 0x5e
	OP_15        = 0x5f
	OP_16        = 0x60

	OP_NOP      = 0x61
	OP_VER      = 0x62
	OP_IF       = 0x63
	OP_NOTIF    = 0x64
	OP_VERIF    = 0x65
	OP_VERNOTIF = 0x66
	OP_ELSE     = 0x67
	OP_ENDIF    = 0x68
	OP_VERIFY   = 0x69
	OP_RETURN   = 0x6a

	OP_TOALTSTACK   = 0x6b
	OP_FROMALTSTACK = 0x6c
	OP_2DROP        = 0x6d
	OP_2DUP         = 0x6e
	OP_3DUP         = 0x6f
	OP_2OVER        = 0x70
	OP_2ROT         = 0x71
	OP_2SWAP        = 0x72
	OP_IFDUP        = 0x73
	OP_DEPTH        = 0x74
	OP_DROP         = 0x75
	OP_DUP          = 0x76
	OP_NIP          = 0x77
	OP_OVER         = 0x78
	OP_PICK         = 0x79
	OP_ROLL         = 0x7a
	OP_ROT          = 0x7b
	OP_SWAP         = 0x7c
	OP_TUCK         = 0x7d

	OP_CAT    = 0x7e
	OP_SUBSTR = 0x7f
	OP_LEFT   = 0x80
	OP_RIGHT  = 0x81
	OP_SIZE   = 0x82

	OP_INVERT      = 0x83
	OP_AND         = 0x84
	OP_OR          = 0x85
	OP_XOR         = 0x86
	OP_EQUAL       = 0x87
	OP_EQUALVERIFY = 0x88
	OP_RESERVED1   = 0x89
	OP_RESERVED2   = 0x8a

	OP_1ADD               = 0x8b
	OP_1SUB               = 0x8c
	OP_2MUL               = 0x8d
	OP_2DIV               = 0x8e
	OP_NEGATE             = 0x8f
	OP_ABS                = 0x90
	OP_NOT                = 0x91
	OP_0NOTEQUAL          = 0x92
	OP_ADD                = 0x93
	OP_SUB                = 0x94
	OP_MUL                = 0x95
	OP_DIV                = 0x96
	OP_MOD                = 0x97
	OP_LSHIFT             = 0x98
	OP_RSHIFT             = 0x99
	OP_BOOLAND            = 0x9a
	OP_BOOLOR             = 0x9b
	OP_NUMEQUAL           = 0x9c
	OP_NUMEQUALVERIFY     = 0x9d
	OP_NUMNOTEQUAL        = 0x9e
	OP_LESSTHAN           = 0x9f
	OP_GREATERTHAN        = 0xa0
	OP_LESSTHANOREQUAL    = 0xa1
	OP_GREATERTHANOREQUAL = 0xa2
	OP_MIN                = 0xa3
	OP_MAX                = 0xa4
	OP_WITHIN             = 0xa5

	OP_RIPEMD160           = 0xa6
	OP_SHA1                = 0xa7
	OP_SHA256              = 0xa8
	OP_HASH160             = 0xa9
	OP_HASH256             = 0xaa
	OP_CODESEPARATOR       = 0xab
	OP_CHECKSIG            = 0xac
	OP_CHECKSIGVERIFY      = 0xad
	OP_CHECKMULTISIG       = 0xae
	OP_CHECKMULTISIGVERIFY = 0xaf

	OP_NOP1                = 0xb0
	OP_CHECKLOCKTIMEVERIFY = 0xb1
	OP_CHECKSEQUENCEVERIFY = 0xb2
	OP_NOP4                = 0xb3
	OP_NOP5                = 0xb4
	OP_NOP6                = 0xb5
	OP_NOP7                = 0xb6
	OP_NOP8                = 0xb7
	OP_TYPE                = 0xb8 // formerly OP_NOP9
	OP_CHECKOUTPUT         = 0xb9 // formerly OP_NOP10

	OP_BLAKE160 = 0xc0
	OP_BLAKE256 = 0xc1
	OP_SHA3     = 0xc2
	OP_KECCAK   = 0xc3

	OP_INVALIDOPCODE = 0xff
)

// opcode describes one entry of the 256-byte opcode table: its canonical
// name (for disassembly), its encoded length in bytes including the opcode
// byte (1 for ordinary opcodes; data length plus one for fixed-length
// pushes; the sentinel
// negative values -1/-2/-4 mean "the following 1/2/4 bytes give the push
// length"), and the function that executes it against a running Engine.
type opcode struct {
	value  byte
	name   string
	length int
	exec   func(*parsedOpcode, *Engine) error
}

// parsedOpcode is one decoded instruction: its opcode table entry plus any
// immediate push data.
type parsedOpcode struct {
	opcode *opcode
	data   []byte
}

// isDisabled reports whether the opcode is permanently removed from
// consensus (spec.md §7 DISABLED_OPCODE).
func (pop *parsedOpcode) isDisabled() bool {
	switch pop.opcode.value {
	case OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT, OP_INVERT, OP_AND, OP_OR,
		OP_XOR, OP_2MUL, OP_2DIV, OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT, OP_RSHIFT:
		return true
	default:
		return false
	}
}

// alwaysIllegal reports whether the opcode must never appear in an
// executed script, regardless of conditional branch state.
func (pop *parsedOpcode) alwaysIllegal() bool {
	switch pop.opcode.value {
	case OP_VERIF, OP_VERNOTIF:
		return true
	default:
		return false
	}
}

// isConditional reports whether the opcode is one of the four that
// manipulate the if-state stack.
func (pop *parsedOpcode) isConditional() bool {
	switch pop.opcode.value {
	case OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF:
		return true
	default:
		return false
	}
}

// bytes returns the serialized form of the single parsed opcode, used to
// reconstruct the subscript fed to CHECKSIG after an OP_CODESEPARATOR.
func (pop *parsedOpcode) bytes() []byte {
	var retbytes []byte
	if pop.opcode.length == 1 {
		retbytes = make([]byte, 1, 1+len(pop.data))
	} else {
		retbytes = make([]byte, 1, pop.opcode.length)
	}

	retbytes[0] = pop.opcode.value
	if pop.opcode.length == 1 {
		retbytes = append(retbytes, pop.data...)
		return retbytes
	}

	l := pop.opcode.length
	switch l {
	case -1:
		retbytes = append(retbytes, byte(len(pop.data)))
	case -2:
		retbytes = append(retbytes, byte(len(pop.data)), byte(len(pop.data)>>8))
	case -4:
		retbytes = append(retbytes, byte(len(pop.data)), byte(len(pop.data)>>8),
			byte(len(pop.data)>>16), byte(len(pop.data)>>24))
	}
	return append(retbytes, pop.data...)
}

var opcodeArray [256]opcode

func init() {
	fillOpcodeArray()
}

// define installs a small helper into the opcode table.
func define(value byte, name string, length int, fn func(*parsedOpcode, *Engine) error) {
	opcodeArray[value] = opcode{value: value, name: name, length: length, exec: fn}
}

func fillOpcodeArray() {
	for i := 0; i < 256; i++ {
		opcodeArray[i] = opcode{value: byte(i), name: fmt.Sprintf("OP_UNKNOWN%d", i), length: 1, exec: opcodeInvalid}
	}

	define(OP_0, "OP_0", 1, opcodePushData)
	for i := byte(OP_DATA_1); i <= OP_DATA_75; i++ {
		define(i, fmt.Sprintf("OP_DATA_%d", i), int(i)+1, opcodePushData)
	}
	define(OP_PUSHDATA1, "OP_PUSHDATA1", -1, opcodePushData)
	define(OP_PUSHDATA2, "OP_PUSHDATA2", -2, opcodePushData)
	define(OP_PUSHDATA4, "OP_PUSHDATA4", -4, opcodePushData)
	define(OP_1NEGATE, "OP_1NEGATE", 1, opcodeNegate)
	define(OP_RESERVED, "OP_RESERVED", 1, opcodeReserved)
	for i := byte(OP_1); i <= OP_16; i++ {
		n := i - OP_1 + 1
		define(i, fmt.Sprintf("OP_%d", n), 1, opcodeN(n))
	}

	define(OP_NOP, "OP_NOP", 1, opcodeNop)
	define(OP_VER, "OP_VER", 1, opcodeReserved)
	define(OP_IF, "OP_IF", 1, opcodeIf)
	define(OP_NOTIF, "OP_NOTIF", 1, opcodeNotIf)
	define(OP_VERIF, "OP_VERIF", 1, opcodeReserved)
	define(OP_VERNOTIF, "OP_VERNOTIF", 1, opcodeReserved)
	define(OP_ELSE, "OP_ELSE", 1, opcodeElse)
	define(OP_ENDIF, "OP_ENDIF", 1, opcodeEndif)
	define(OP_VERIFY, "OP_VERIFY", 1, opcodeVerify)
	define(OP_RETURN, "OP_RETURN", 1, opcodeReturn)

	define(OP_TOALTSTACK, "OP_TOALTSTACK", 1, opcodeToAltStack)
	define(OP_FROMALTSTACK, "OP_FROMALTSTACK", 1, opcodeFromAltStack)
	define(OP_2DROP, "OP_2DROP", 1, opcode2Drop)
	define(OP_2DUP, "OP_2DUP", 1, opcode2Dup)
	define(OP_3DUP, "OP_3DUP", 1, opcode3Dup)
	define(OP_2OVER, "OP_2OVER", 1, opcode2Over)
	define(OP_2ROT, "OP_2ROT", 1, opcode2Rot)
	define(OP_2SWAP, "OP_2SWAP", 1, opcode2Swap)
	define(OP_IFDUP, "OP_IFDUP", 1, opcodeIfDup)
	define(OP_DEPTH, "OP_DEPTH", 1, opcodeDepth)
	define(OP_DROP, "OP_DROP", 1, opcodeDrop)
	define(OP_DUP, "OP_DUP", 1, opcodeDup)
	define(OP_NIP, "OP_NIP", 1, opcodeNip)
	define(OP_OVER, "OP_OVER", 1, opcodeOver)
	define(OP_PICK, "OP_PICK", 1, opcodePick)
	define(OP_ROLL, "OP_ROLL", 1, opcodeRoll)
	define(OP_ROT, "OP_ROT", 1, opcodeRot)
	define(OP_SWAP, "OP_SWAP", 1, opcodeSwap)
	define(OP_TUCK, "OP_TUCK", 1, opcodeTuck)

	for v, n := range map[byte]string{
		OP_CAT: "OP_CAT", OP_SUBSTR: "OP_SUBSTR", OP_LEFT: "OP_LEFT",
		OP_RIGHT: "OP_RIGHT", OP_INVERT: "OP_INVERT", OP_AND: "OP_AND",
		OP_OR: "OP_OR", OP_XOR: "OP_XOR", OP_2MUL: "OP_2MUL", OP_2DIV: "OP_2DIV",
		OP_MUL: "OP_MUL", OP_DIV: "OP_DIV", OP_MOD: "OP_MOD",
		OP_LSHIFT: "OP_LSHIFT", OP_RSHIFT: "OP_RSHIFT",
	} {
		define(v, n, 1, opcodeDisabled)
	}

	define(OP_SIZE, "OP_SIZE", 1, opcodeSize)
	define(OP_EQUAL, "OP_EQUAL", 1, opcodeEqual)
	define(OP_EQUALVERIFY, "OP_EQUALVERIFY", 1, opcodeEqualVerify)
	define(OP_RESERVED1, "OP_RESERVED1", 1, opcodeReserved)
	define(OP_RESERVED2, "OP_RESERVED2", 1, opcodeReserved)

	define(OP_1ADD, "OP_1ADD", 1, opcode1Add)
	define(OP_1SUB, "OP_1SUB", 1, opcode1Sub)
	define(OP_NEGATE, "OP_NEGATE", 1, opcodeArithNegate)
	define(OP_ABS, "OP_ABS", 1, opcodeAbs)
	define(OP_NOT, "OP_NOT", 1, opcodeNot)
	define(OP_0NOTEQUAL, "OP_0NOTEQUAL", 1, opcode0NotEqual)
	define(OP_ADD, "OP_ADD", 1, opcodeAdd)
	define(OP_SUB, "OP_SUB", 1, opcodeSub)
	define(OP_BOOLAND, "OP_BOOLAND", 1, opcodeBoolAnd)
	define(OP_BOOLOR, "OP_BOOLOR", 1, opcodeBoolOr)
	define(OP_NUMEQUAL, "OP_NUMEQUAL", 1, opcodeNumEqual)
	define(OP_NUMEQUALVERIFY, "OP_NUMEQUALVERIFY", 1, opcodeNumEqualVerify)
	define(OP_NUMNOTEQUAL, "OP_NUMNOTEQUAL", 1, opcodeNumNotEqual)
	define(OP_LESSTHAN, "OP_LESSTHAN", 1, opcodeLessThan)
	define(OP_GREATERTHAN, "OP_GREATERTHAN", 1, opcodeGreaterThan)
	define(OP_LESSTHANOREQUAL, "OP_LESSTHANOREQUAL", 1, opcodeLessThanOrEqual)
	define(OP_GREATERTHANOREQUAL, "OP_GREATERTHANOREQUAL", 1, opcodeGreaterThanOrEqual)
	define(OP_MIN, "OP_MIN", 1, opcodeMin)
	define(OP_MAX, "OP_MAX", 1, opcodeMax)
	define(OP_WITHIN, "OP_WITHIN", 1, opcodeWithin)

	define(OP_RIPEMD160, "OP_RIPEMD160", 1, opcodeRipemd160)
	define(OP_SHA1, "OP_SHA1", 1, opcodeSha1)
	define(OP_SHA256, "OP_SHA256", 1, opcodeSha256)
	define(OP_HASH160, "OP_HASH160", 1, opcodeHash160)
	define(OP_HASH256, "OP_HASH256", 1, opcodeHash256)
	define(OP_CODESEPARATOR, "OP_CODESEPARATOR", 1, opcodeCodeSeparator)
	define(OP_CHECKSIG, "OP_CHECKSIG", 1, opcodeCheckSig)
	define(OP_CHECKSIGVERIFY, "OP_CHECKSIGVERIFY", 1, opcodeCheckSigVerify)
	define(OP_CHECKMULTISIG, "OP_CHECKMULTISIG", 1, opcodeCheckMultiSig)
	define(OP_CHECKMULTISIGVERIFY, "OP_CHECKMULTISIGVERIFY", 1, opcodeCheckMultiSigVerify)

	define(OP_NOP1, "OP_NOP1", 1, opcodeNop)
	define(OP_CHECKLOCKTIMEVERIFY, "OP_CHECKLOCKTIMEVERIFY", 1, opcodeCheckLockTimeVerify)
	define(OP_CHECKSEQUENCEVERIFY, "OP_CHECKSEQUENCEVERIFY", 1, opcodeCheckSequenceVerify)
	for _, v := range []byte{OP_NOP4, OP_NOP5, OP_NOP6, OP_NOP7, OP_NOP8} {
		define(v, fmt.Sprintf("OP_NOP%d", v-OP_NOP1+1), 1, opcodeNop)
	}
	define(OP_TYPE, "OP_TYPE", 1, opcodeType)
	define(OP_CHECKOUTPUT, "OP_CHECKOUTPUT", 1, opcodeCheckOutput)

	define(OP_BLAKE160, "OP_BLAKE160", 1, opcodeBlake160)
	define(OP_BLAKE256, "OP_BLAKE256", 1, opcodeBlake256)
	define(OP_SHA3, "OP_SHA3", 1, opcodeSha3)
	define(OP_KECCAK, "OP_KECCAK", 1, opcodeKeccak)

	define(OP_INVALIDOPCODE, "OP_INVALIDOPCODE", 1, opcodeInvalid)
}

func opcodeN(n byte) func(*parsedOpcode, *Engine) error {
	return func(pop *parsedOpcode, vm *Engine) error {
		vm.dstack.PushInt(ScriptNum(n))
		return nil
	}
}

// DisasmString formats the passed script into a human-readable, space
// separated string of opcode mnemonics, used by RPC collaborators for
// debugging.
func DisasmString(script []byte) (string, error) {
	pops, err := parseScript(script)
	if err != nil {
		return "", err
	}

	var disstr string
	for i, pop := range pops {
		if i != 0 {
			disstr += " "
		}
		disstr += disasmOpcode(pop)
	}
	return disstr, nil
}

func disasmOpcode(pop *parsedOpcode) string {
	if len(pop.data) == 0 || pop.opcode.length == 1 {
		return pop.opcode.name
	}
	return fmt.Sprintf("%x", pop.data)
}

// parseScript preparses the script into a list of parsed opcodes, computing
// push lengths up front so the interpreter loop does not need to.
func parseScript(script []byte) ([]*parsedOpcode, error) {
	var pops []*parsedOpcode

	for i := 0; i < len(script); {
		instr := script[i]
		op := &opcodeArray[instr]
		pop := &parsedOpcode{opcode: op}

		switch {
		case op.length == 1:
			i++
		case op.length > 1:
			if len(script[i:]) < op.length {
				return nil, scriptError(ErrMinimalData, "opcode requires more bytes than script has remaining")
			}
			pop.data = script[i+1 : i+op.length]
			i += op.length
		case op.length < 0:
			i++
			var lenBytes int
			switch op.length {
			case -1:
				lenBytes = 1
			case -2:
				lenBytes = 2
			case -4:
				lenBytes = 4
			}
			if len(script[i:]) < lenBytes {
				return nil, scriptError(ErrMalformedPush, "not enough bytes for pushdata length")
			}
			var dataLen int
			for b := 0; b < lenBytes; b++ {
				dataLen |= int(script[i+b]) << uint(8*b)
			}
			i += lenBytes
			if len(script[i:]) < dataLen {
				return nil, scriptError(ErrMalformedPush, "not enough bytes for pushdata payload")
			}
			pop.data = script[i : i+dataLen]
			i += dataLen
		}

		pops = append(pops, pop)
	}
	return pops, nil
}
