// Package vm implements the register-based stack virtual machine that
// executes the code array the codegen package produces: a small register
// file backed by a 1-indexed execution stack holding activation records,
// driven by a fetch/execute loop that also renders the original's
// per-instruction trace.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/plzero-lang/plzero/isa"
)

const (
	defaultMaxStackHeight = 2000
	defaultRegisterCount  = 16
)

// VM holds all machine state: the register file, the 1-indexed stack,
// and the three control registers (PC, BP, SP).
type VM struct {
	code []isa.Instruction

	stack []int
	rf    []int

	pc, bp, sp int
	halted     bool

	out io.Writer
}

// New creates a VM with the specification's default capacities.
func New(code []isa.Instruction, out io.Writer) *VM {
	return NewWithCapacity(code, out, defaultMaxStackHeight, defaultRegisterCount)
}

// NewWithCapacity creates a VM with caller-supplied stack height and
// register count, wired from the config package's overridable defaults.
func NewWithCapacity(code []isa.Instruction, out io.Writer, maxStackHeight, registerCount int) *VM {
	return &VM{
		code:  code,
		stack: make([]int, maxStackHeight+1),
		rf:    make([]int, registerCount),
		bp:    1,
		out:   out,
	}
}

// regGet/regSet bounds-check register access. The original's register
// arithmetic can compute a negative or out-of-range index (see the
// unary-minus note on codegen in DESIGN.md); in C++ that's undefined behavior,
// but Go panics on an out-of-range slice index, so an invalid index is
// treated as a silent no-op/zero read here rather than crashing the VM.
func (vm *VM) regGet(i int) int {
	if i < 0 || i >= len(vm.rf) {
		return 0
	}
	return vm.rf[i]
}

func (vm *VM) regSet(i, v int) {
	if i < 0 || i >= len(vm.rf) {
		return
	}
	vm.rf[i] = v
}

func (vm *VM) stackGet(i int) int {
	if i < 0 || i >= len(vm.stack) {
		return 0
	}
	return vm.stack[i]
}

func (vm *VM) stackSet(i, v int) {
	if i < 0 || i >= len(vm.stack) {
		return
	}
	vm.stack[i] = v
}

// base walks lexLevel static links up from bp, landing on the base of an
// enclosing activation record.
func (vm *VM) base(lexLevel, bp int) int {
	for ; lexLevel > 0; lexLevel-- {
		bp = vm.stackGet(bp + 1)
	}
	return bp
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Run executes the program until a SIO3 instruction halts it or PC leaves
// the code array, writing the full listing + execution trace to w and
// reading SIO2 input from in. It returns a copy of the final register file
// (one entry per register) and the live portion of the stack (index 1..SP).
func (vm *VM) Run(w io.Writer, in io.Reader) (registers []int, stack []int) {
	fmt.Fprintf(w, "Input ASM code:\nLine       OP        R    L    M\n")
	for i, instr := range vm.code {
		fmt.Fprintf(w, "%-11d%-10s%d    %d    %d\n", i, instr.Op, instr.R, instr.L, instr.M)
	}
	fmt.Fprintf(w, "\n\nInstrNum   OP        R    L    M        PC    BP    SP        %-50sRegisters\n", "Stack ")

	reader := bufio.NewReader(in)

	for !vm.halted {
		if vm.pc < 0 || vm.pc >= len(vm.code) {
			break
		}

		instr := vm.code[vm.pc]
		fetchPC := vm.pc
		header := fmt.Sprintf("%-11d%-10s%-5d%-5d%-9d", fetchPC, instr.Op, instr.R, instr.L, instr.M)

		vm.pc++
		vm.execute(instr, reader)

		fmt.Fprintf(w, "%s\n", vm.traceRow(header))
	}

	return append([]int(nil), vm.rf...), append([]int(nil), vm.stack[1:vm.sp+1]...)
}

// traceRow renders the PC/BP/SP + stack + register columns that follow
// an instruction's execution, matching the original's exact layout: a
// left-justified 112-character field holding the instruction columns,
// PC/BP/SP and the walked stack, followed by registers 0-7 at field width
// 3 each.
func (vm *VM) traceRow(header string) string {
	var stackBuf strings.Builder

	nextLexLvl := vm.stackGet(vm.bp + 1)
	nextBP := vm.base(nextLexLvl, vm.bp)

	for i := 1; i <= vm.sp; i++ {
		if i == nextBP {
			nextLexLvl--
			nextBP = vm.base(nextLexLvl, vm.bp)
			if i > 1 {
				stackBuf.WriteString("| ")
			}
		}
		val := vm.stackGet(i)
		fmt.Fprintf(&stackBuf, "%d ", val)
		if val < 10 {
			stackBuf.WriteByte(' ')
		}
	}

	pcBpSp := fmt.Sprintf("%-6d%-6d%-10d", vm.pc, vm.bp, vm.sp)
	row := fmt.Sprintf("%-112s", header+pcBpSp+stackBuf.String())

	var regBuf strings.Builder
	for i := 0; i < 8 && i < len(vm.rf); i++ {
		fmt.Fprintf(&regBuf, "%-3d", vm.rf[i])
	}

	return row + regBuf.String()
}

func (vm *VM) execute(instr isa.Instruction, in *bufio.Reader) {
	switch instr.Op {
	case isa.LIT:
		vm.regSet(instr.R, instr.M)

	case isa.RTN:
		vm.sp = vm.bp - 1
		vm.bp = vm.stackGet(vm.sp + 3)
		vm.pc = vm.stackGet(vm.sp + 4)

	case isa.LOD:
		vm.regSet(instr.R, vm.stackGet(vm.base(instr.L, vm.bp)+instr.M))

	case isa.STO:
		vm.stackSet(vm.base(instr.L, vm.bp)+instr.M, vm.regGet(instr.R))

	case isa.CAL:
		vm.stackSet(vm.sp+1, 0)
		vm.stackSet(vm.sp+2, vm.base(instr.L, vm.bp))
		vm.stackSet(vm.sp+3, vm.bp)
		vm.stackSet(vm.sp+4, vm.pc)
		vm.bp = vm.sp + 1
		vm.pc = instr.M

	case isa.INC:
		vm.sp += instr.M

	case isa.JMP:
		vm.pc = instr.M

	case isa.JPC:
		if vm.regGet(instr.R) == 0 {
			vm.pc = instr.M
		}

	case isa.SIO1:
		fmt.Fprintln(vm.out, vm.regGet(instr.R))

	case isa.SIO2:
		var v int
		fmt.Fscan(in, &v)
		vm.regSet(instr.R, v)

	case isa.SIO3:
		vm.halted = true

	case isa.NEG:
		vm.regSet(instr.R, -vm.regGet(instr.L))

	case isa.ADD:
		vm.regSet(instr.R, vm.regGet(instr.L)+vm.regGet(instr.M))

	case isa.SUB:
		vm.regSet(instr.R, vm.regGet(instr.L)-vm.regGet(instr.M))

	case isa.MUL:
		vm.regSet(instr.R, vm.regGet(instr.L)*vm.regGet(instr.M))

	case isa.DIV:
		// Integer division by zero panics in Go where C++ would invoke
		// undefined behavior (typically SIGFPE); treated as a zero
		// result so a malformed program halts deterministically instead
		// of crashing the VM process.
		if divisor := vm.regGet(instr.M); divisor != 0 {
			vm.regSet(instr.R, vm.regGet(instr.L)/divisor)
		} else {
			vm.regSet(instr.R, 0)
		}

	case isa.ODD:
		vm.regSet(instr.R, vm.regGet(instr.R)%2)

	case isa.MOD:
		if divisor := vm.regGet(instr.M); divisor != 0 {
			vm.regSet(instr.R, vm.regGet(instr.L)%divisor)
		} else {
			vm.regSet(instr.R, 0)
		}

	case isa.EQL:
		vm.regSet(instr.R, boolToInt(vm.regGet(instr.L) == vm.regGet(instr.M)))

	case isa.NEQ:
		vm.regSet(instr.R, boolToInt(vm.regGet(instr.L) != vm.regGet(instr.M)))

	case isa.LSS:
		vm.regSet(instr.R, boolToInt(vm.regGet(instr.L) < vm.regGet(instr.M)))

	case isa.LEQ:
		vm.regSet(instr.R, boolToInt(vm.regGet(instr.L) <= vm.regGet(instr.M)))

	case isa.GTR:
		vm.regSet(instr.R, boolToInt(vm.regGet(instr.L) > vm.regGet(instr.M)))

	case isa.GEQ:
		vm.regSet(instr.R, boolToInt(vm.regGet(instr.L) >= vm.regGet(instr.M)))
	}
}
