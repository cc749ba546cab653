package finalize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zibelmann/snarkVM/internal/network"
)

func field(v uint64) network.Field {
	var f network.Field
	f.SetUint64(v)
	return f
}

func TestParseTextRoundTrip(t *testing.T) {
	lines := []string{
		"get object[r0] into r1;",
		"get.or_use balances[r0] 0 into r2;",
		"set r3 into balances[r0];",
		"add r2 r1 into r3;",
		"sub r2 1 into r4;",
		"mul r4 r4 into r5;",
	}
	for _, line := range lines {
		cmd, err := FromString(line)
		require.NoError(t, err, "parsing %q", line)
		require.Equal(t, line, cmd.String())
	}
}

func TestParseGetOrUsePrecedence(t *testing.T) {
	cmd, err := FromString("get.or_use object[r0] 7 into r1;")
	require.NoError(t, err)
	_, ok := cmd.(*GetOrUse)
	require.True(t, ok, "expected *GetOrUse, got %T", cmd)
}

func TestParseTrailingInput(t *testing.T) {
	_, err := FromString("get object[r0] into r1; extra")
	require.ErrorIs(t, err, network.ErrMalformedInput)
}

func TestParseOversizedMappingName(t *testing.T) {
	long := strings.Repeat("a", 300)
	_, err := FromString("get " + long + "[r0] into r1;")
	require.ErrorIs(t, err, network.ErrMalformedInput)
	_, err = FromString("get " + strings.Repeat("a", 32) + "[r0] into r1;")
	require.ErrorIs(t, err, network.ErrMalformedInput)

	// A 31-byte name is the limit, and it survives the byte codec.
	cmd, err := FromString("get " + strings.Repeat("a", 31) + "[r0] into r1;")
	require.NoError(t, err)
	back, err := DecodeCommand(EncodeCommand(cmd))
	require.NoError(t, err)
	require.Equal(t, cmd, back)
}

func TestParseLiteralKey(t *testing.T) {
	cmd, err := FromString("get.or_use supply[0] 0 into r0;")
	require.NoError(t, err)
	g, ok := cmd.(*GetOrUse)
	require.True(t, ok)
	require.Equal(t, LiteralOperand, g.Key.Kind)
	require.True(t, g.Key.Literal.IsZero())
}

func TestBytesRoundTrip(t *testing.T) {
	commands := []Command{
		&Get{Mapping: "object", Key: Reg(0), Destination: 1},
		&GetOrUse{Mapping: "balances", Key: Reg(0), Default: Lit(field(0)), Destination: 2},
		&Set{Value: Reg(3), Mapping: "balances", Key: Reg(0)},
		&Instruction{Opcode: OpAdd, Operands: [2]Operand{Reg(2), Lit(field(9))}, Destination: 3},
	}
	for _, cmd := range commands {
		data := EncodeCommand(cmd)
		back, err := DecodeCommand(data)
		require.NoError(t, err, "decoding %s", cmd)
		require.Equal(t, cmd, back)
		require.Equal(t, cmd.String(), back.String())
	}
}

func TestTextAndBytesAgree(t *testing.T) {
	cmd, err := FromString("get object[r0] into r1;")
	require.NoError(t, err)
	back, err := DecodeCommand(EncodeCommand(cmd))
	require.NoError(t, err)
	require.Equal(t, cmd, back)
}

func TestDecodeInvalidVariant(t *testing.T) {
	_, err := DecodeCommand([]byte{4})
	require.ErrorIs(t, err, network.ErrMalformedInput)
	_, err = DecodeCommand([]byte{250})
	require.ErrorIs(t, err, network.ErrMalformedInput)
}

func TestDecodeTrailingBytes(t *testing.T) {
	data := EncodeCommand(&Get{Mapping: "m", Key: Reg(0), Destination: 1})
	_, err := DecodeCommand(append(data, 0x00))
	require.ErrorIs(t, err, network.ErrMalformedInput)
}

func TestDecodeTruncated(t *testing.T) {
	data := EncodeCommand(&Set{Value: Reg(1), Mapping: "m", Key: Lit(field(5))})
	for i := 1; i < len(data); i++ {
		_, err := DecodeCommand(data[:i])
		require.Error(t, err, "truncation at %d should fail", i)
	}
}

func TestGetAbsentKeyFails(t *testing.T) {
	store := NewMemoryStore()
	regs := NewRegisters()
	if err := regs.Store(0, field(42)); err != nil {
		t.Fatalf("seeding register failed: %v", err)
	}
	cmd := &Get{Mapping: "object", Key: Reg(0), Destination: 1}
	_, err := cmd.Finalize(&Context{ProgramID: "demo"}, store, regs)
	if !errors.Is(err, network.ErrMalformedInput) {
		t.Errorf("expected malformed input error for absent key, got %v", err)
	}
}

func TestGetOrUseFallsBack(t *testing.T) {
	store := NewMemoryStore()
	regs := NewRegisters()
	if err := regs.Store(0, field(42)); err != nil {
		t.Fatalf("seeding register failed: %v", err)
	}
	cmd := &GetOrUse{Mapping: "object", Key: Reg(0), Default: Lit(field(7)), Destination: 1}
	op, err := cmd.Finalize(&Context{ProgramID: "demo"}, store, regs)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if op != nil {
		t.Errorf("get.or_use should not yield an operation")
	}
	got, err := regs.Load(1)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := field(7)
	if !got.Equal(&want) {
		t.Errorf("expected default 7, got %s", got.String())
	}
}

func TestSetYieldsOperation(t *testing.T) {
	store := NewMemoryStore()
	regs := NewRegisters()
	if err := regs.Store(0, field(1)); err != nil {
		t.Fatalf("seeding register failed: %v", err)
	}
	if err := regs.Store(3, field(99)); err != nil {
		t.Fatalf("seeding register failed: %v", err)
	}
	cmd := &Set{Value: Reg(3), Mapping: "balances", Key: Reg(0)}
	op, err := cmd.Finalize(&Context{ProgramID: "demo"}, store, regs)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if op == nil {
		t.Fatalf("set should yield an operation")
	}
	if op.Type != UpdateKeyValue || op.Mapping != "balances" || op.ProgramID != "demo" {
		t.Errorf("operation fields wrong: %+v", op)
	}
	stored, ok, err := store.Get("demo", "balances", field(1))
	if err != nil || !ok {
		t.Fatalf("stored value missing: ok=%v err=%v", ok, err)
	}
	want := field(99)
	if !stored.Equal(&want) {
		t.Errorf("stored value mismatch: %s", stored.String())
	}
}

func TestInstructionArithmetic(t *testing.T) {
	regs := NewRegisters()
	if err := regs.Store(0, field(6)); err != nil {
		t.Fatalf("seeding register failed: %v", err)
	}
	if err := regs.Store(1, field(7)); err != nil {
		t.Fatalf("seeding register failed: %v", err)
	}
	cmd := &Instruction{Opcode: OpMul, Operands: [2]Operand{Reg(0), Reg(1)}, Destination: 2}
	op, err := cmd.Finalize(&Context{ProgramID: "demo"}, NewMemoryStore(), regs)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if op != nil {
		t.Errorf("instruction should not yield an operation")
	}
	got, err := regs.Load(2)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := field(42)
	if !got.Equal(&want) {
		t.Errorf("expected 42, got %s", got.String())
	}
}

func TestRegistersWriteOnce(t *testing.T) {
	regs := NewRegisters()
	if err := regs.Store(0, field(1)); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	err := regs.Store(0, field(2))
	if !errors.Is(err, network.ErrStateConflict) {
		t.Errorf("expected state conflict on rewrite, got %v", err)
	}
}

func TestRegistersLoadUnset(t *testing.T) {
	_, err := NewRegisters().Load(5)
	if !errors.Is(err, network.ErrMalformedInput) {
		t.Errorf("expected malformed input error for unset register, got %v", err)
	}
}
