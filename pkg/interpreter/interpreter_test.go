package interpreter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/diag"
	"paw/interpreter-go/pkg/runtime"
)

// runProgram checks and executes a program, returning the say output.
func runProgram(t *testing.T, opts Options, stmts ...ast.Statement) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	opts.Stdout = &buf
	err := Run(stmts, opts)
	return buf.String(), err
}

func mustRun(t *testing.T, stmts ...ast.Statement) string {
	t.Helper()
	out, err := runProgram(t, Options{}, stmts...)
	if err != nil {
		t.Fatalf("program failed: %v", err)
	}
	return out
}

func wantOutput(t *testing.T, got string, lines ...string) {
	t.Helper()
	want := strings.Join(lines, "\n") + "\n"
	if len(lines) == 0 {
		want = ""
	}
	if got != want {
		t.Fatalf("output mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestSayRendersValues(t *testing.T) {
	out := mustRun(t,
		ast.Say(ast.Bin("+", ast.Int(1), ast.Int(2))),
		ast.Say(ast.Str("woof")),
		ast.Say(ast.Nopaw()),
		ast.Say(ast.Arr(ast.Int(1), ast.Int(2))),
		ast.Say(ast.Bool(true)),
	)
	wantOutput(t, out, "3", "woof", "nopaw", "[1, 2]", "true")
}

func TestFunctionCallAddition(t *testing.T) {
	out := mustRun(t,
		ast.Fun("add", []ast.Param{ast.Par("a", "Int"), ast.Par("b", "Int")}, "Int",
			ast.Ret(ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		),
		ast.Say(ast.Call(ast.ID("add"), ast.Int(2), ast.Int(3))),
	)
	wantOutput(t, out, "5")
}

func TestLetThenSay(t *testing.T) {
	out := mustRun(t,
		ast.Let("x", "Int", ast.Int(5)),
		ast.Say(ast.ID("x")),
	)
	wantOutput(t, out, "5")
}

func TestClosureFromLoopIterationSeesLaterMutations(t *testing.T) {
	out := mustRun(t,
		ast.Let("count", "Int", ast.Int(0)),
		ast.Let("probe", "Any", ast.Int(0)),
		ast.LoopRange("i", ast.Int(1), ast.Int(1),
			ast.Fun("snapshot", nil, "Int", ast.Ret(ast.ID("count"))),
			ast.Assign("probe", ast.ID("snapshot")),
		),
		ast.Assign("count", ast.Int(5)),
		ast.Say(ast.Call(ast.ID("probe"))),
	)
	wantOutput(t, out, "5")
}

func TestClosureCapturesEnvironmentByReference(t *testing.T) {
	out := mustRun(t,
		ast.Let("count", "Int", ast.Int(0)),
		ast.Fun("bump", nil, "Void",
			ast.Assign("count", ast.Bin("+", ast.ID("count"), ast.Int(1))),
		),
		ast.Expr(ast.Call(ast.ID("bump"))),
		ast.Expr(ast.Call(ast.ID("bump"))),
		ast.Say(ast.ID("count")),
	)
	wantOutput(t, out, "2")
}

func TestRecursionComputesFactorial(t *testing.T) {
	out := mustRun(t,
		ast.Fun("fact", []ast.Param{ast.Par("n", "Int")}, "Int",
			ast.IfElse(ast.Bin("<=", ast.ID("n"), ast.Int(1)),
				[]ast.Statement{ast.Ret(ast.Int(1))},
				[]ast.Statement{ast.Ret(ast.Bin("*", ast.ID("n"),
					ast.Call(ast.ID("fact"), ast.Bin("-", ast.ID("n"), ast.Int(1)))))},
			),
		),
		ast.Say(ast.Call(ast.ID("fact"), ast.Int(5))),
	)
	wantOutput(t, out, "120")
}

func TestCallDepthLimitRaises(t *testing.T) {
	var buf bytes.Buffer
	err := Run([]ast.Statement{
		ast.Fun("spin", nil, "Void", ast.Expr(ast.Call(ast.ID("spin")))),
		ast.Expr(ast.Call(ast.ID("spin"))),
	}, Options{Stdout: &buf, MaxCallDepth: 32})
	if err == nil {
		t.Fatalf("expected a call depth error")
	}
	var d *diag.Error
	if !errors.As(err, &d) || d.Kind != diag.KindRuntime {
		t.Fatalf("expected a runtime error, got %v", err)
	}
}

func TestRangeLoopInclusiveBounds(t *testing.T) {
	out := mustRun(t,
		ast.LoopRange("i", ast.Int(1), ast.Int(3), ast.Say(ast.ID("i"))),
	)
	wantOutput(t, out, "1", "2", "3")
}

func TestWhileLoopBreakAndContinue(t *testing.T) {
	out := mustRun(t,
		ast.Let("i", "Int", ast.Int(0)),
		ast.LoopWhile(ast.Bool(true),
			ast.Assign("i", ast.Bin("+", ast.ID("i"), ast.Int(1))),
			ast.If(ast.Bin("==", ast.ID("i"), ast.Int(2)), ast.Cont()),
			ast.If(ast.Bin(">", ast.ID("i"), ast.Int(4)), ast.Brk()),
			ast.Say(ast.ID("i")),
		),
	)
	wantOutput(t, out, "1", "3", "4")
}

func TestIterableLoopVisitsElements(t *testing.T) {
	out := mustRun(t,
		ast.Let("xs", "Array<String>", ast.Arr(ast.Str("a"), ast.Str("b"))),
		ast.LoopEach("x", ast.ID("xs"), ast.Say(ast.ID("x"))),
	)
	wantOutput(t, out, "a", "b")
}

func TestSniffSnatchLastlyOrderAndRecovery(t *testing.T) {
	out := mustRun(t,
		ast.Sniff(
			[]ast.Statement{ast.Bark(ast.Str("boom")), ast.Say(ast.Str("unreachable"))},
			"e",
			[]ast.Statement{ast.Say(ast.ID("e"))},
			[]ast.Statement{ast.Say(ast.Str("done"))},
		),
		ast.Say(ast.Str("after")),
	)
	wantOutput(t, out, "boom", "done", "after")
}

func TestLastlyRunsOnSuccess(t *testing.T) {
	out := mustRun(t,
		ast.Sniff(
			[]ast.Statement{ast.Say(ast.Str("body"))},
			"",
			nil,
			[]ast.Statement{ast.Say(ast.Str("done"))},
		),
	)
	wantOutput(t, out, "body", "done")
}

func TestLastlyWithoutSnatchDoesNotSwallow(t *testing.T) {
	out, err := runProgram(t, Options{},
		ast.Sniff(
			[]ast.Statement{ast.Bark(ast.Str("boom"))},
			"",
			nil,
			[]ast.Statement{ast.Say(ast.Str("done"))},
		),
		ast.Say(ast.Str("unreachable")),
	)
	if err == nil {
		t.Fatalf("expected the bark to propagate past the handlerless sniff")
	}
	var d *diag.Error
	if !errors.As(err, &d) || d.Kind != diag.KindRuntime || d.Message != "boom" {
		t.Fatalf("unexpected error %v", err)
	}
	wantOutput(t, out, "done")
}

func TestUncaughtBarkSurfacesAsRuntimeError(t *testing.T) {
	out, err := runProgram(t, Options{}, ast.Bark(ast.Str("bad dog")))
	if err == nil {
		t.Fatalf("expected the bark to surface")
	}
	var d *diag.Error
	if !errors.As(err, &d) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if d.Kind != diag.KindRuntime || d.Message != "bad dog" {
		t.Fatalf("unexpected error %v", d)
	}
	wantOutput(t, out)
}

func TestDivisionByZeroIsCatchable(t *testing.T) {
	out := mustRun(t,
		ast.Sniff(
			[]ast.Statement{ast.Say(ast.Bin("/", ast.Int(1), ast.Int(0)))},
			"e",
			[]ast.Statement{ast.Say(ast.ID("e"))},
			nil,
		),
	)
	wantOutput(t, out, "division by zero")
}

func TestInternalErrorsAreNotCatchable(t *testing.T) {
	// No loader is configured, so the import fails internally; sniff must
	// not intercept it.
	out, err := runProgram(t, Options{},
		ast.Sniff(
			[]ast.Statement{ast.Import("m", "missing")},
			"e",
			[]ast.Statement{ast.Say(ast.Str("caught"))},
			nil,
		),
	)
	if err == nil {
		t.Fatalf("expected the internal error to propagate")
	}
	var d *diag.Error
	if !errors.As(err, &d) || d.Kind != diag.KindInternal {
		t.Fatalf("expected an internal error, got %v", err)
	}
	wantOutput(t, out)
}

func TestIndexOutOfRangeYieldsNull(t *testing.T) {
	out := mustRun(t,
		ast.Let("xs", "Array<Int>", ast.Arr(ast.Int(10), ast.Int(20))),
		ast.Say(ast.Index(ast.ID("xs"), ast.Int(1))),
		ast.Say(ast.Index(ast.ID("xs"), ast.Int(10))),
		ast.Say(ast.Index(ast.ID("xs"), ast.Un("-", ast.Int(1)))),
	)
	wantOutput(t, out, "20", "nopaw", "nopaw")
}

func TestArrayPushBuildsFreshValuePopYieldsElement(t *testing.T) {
	interp := New(Options{Stdout: &bytes.Buffer{}})
	err := interp.EvaluateProgram([]ast.Statement{
		ast.Let("xs", "", ast.Arr(ast.Int(1), ast.Int(2))),
		ast.Let("ys", "", ast.Method(ast.ID("xs"), "push", ast.Int(3))),
		ast.Let("last", "", ast.Method(ast.ID("ys"), "pop")),
	})
	if err != nil {
		t.Fatalf("program failed: %v", err)
	}
	env := interp.GlobalEnvironment()
	xsVal, _ := env.Get("xs")
	if xs := xsVal.(*runtime.ArrayValue); len(xs.Elements) != 2 {
		t.Fatalf("push must not mutate the receiver, got %d elements", len(xs.Elements))
	}
	ysVal, _ := env.Get("ys")
	if ys := ysVal.(*runtime.ArrayValue); len(ys.Elements) != 3 {
		t.Fatalf("push result should have 3 elements, got %d", len(ys.Elements))
	}
	lastVal, _ := env.Get("last")
	if last := lastVal.(runtime.IntValue); last.Val != 3 {
		t.Fatalf("pop should yield the final element, got %#v", lastVal)
	}
}

func TestPopFromEmptyArrayIsCatchable(t *testing.T) {
	out := mustRun(t,
		ast.Sniff(
			[]ast.Statement{
				ast.Let("xs", "Array<Int>", ast.Arr()),
				ast.Expr(ast.Method(ast.ID("xs"), "pop")),
			},
			"e",
			[]ast.Statement{ast.Say(ast.ID("e"))},
			nil,
		),
	)
	if !strings.Contains(out, "empty") {
		t.Fatalf("expected the empty-pop message, got %q", out)
	}
}

func TestSuspendingFunctionIsLazyAndMemoized(t *testing.T) {
	out := mustRun(t,
		ast.SuspFun("tick", nil, "Int",
			ast.Say(ast.Str("ran")),
			ast.Ret(ast.Int(7)),
		),
		ast.Let("f", "", ast.Call(ast.ID("tick"))),
		ast.Say(ast.Str("before")),
		ast.Say(ast.Await(ast.ID("f"))),
		ast.Say(ast.Await(ast.ID("f"))),
	)
	wantOutput(t, out, "before", "ran", "7", "7")
}

func TestAwaitNonFutureIsIdentity(t *testing.T) {
	out := mustRun(t, ast.Say(ast.Await(ast.Int(5))))
	wantOutput(t, out, "5")
}

func TestAwaitedResultMatchesDirectCall(t *testing.T) {
	out := mustRun(t,
		ast.Fun("double", []ast.Param{ast.Par("n", "Int")}, "Int",
			ast.Ret(ast.Bin("*", ast.ID("n"), ast.Int(2))),
		),
		ast.SuspFun("doubleLater", []ast.Param{ast.Par("n", "Int")}, "Int",
			ast.Ret(ast.Bin("*", ast.ID("n"), ast.Int(2))),
		),
		ast.Say(ast.Bin("==",
			ast.Call(ast.ID("double"), ast.Int(21)),
			ast.Await(ast.Call(ast.ID("doubleLater"), ast.Int(21))),
		)),
	)
	wantOutput(t, out, "true")
}

func TestAskBindsConsoleInput(t *testing.T) {
	opts := Options{
		ReadLine: func(prompt string) (string, error) {
			if prompt != "Name?" {
				t.Fatalf("unexpected prompt %q", prompt)
			}
			return "Rex", nil
		},
	}
	out, err := runProgram(t, opts,
		ast.Ask("Name?", "name", "String"),
		ast.Say(ast.Bin("+", ast.Str("hello "), ast.ID("name"))),
	)
	if err != nil {
		t.Fatalf("program failed: %v", err)
	}
	wantOutput(t, out, "hello Rex")
}

func TestCheckFailureProducesNoOutput(t *testing.T) {
	out, err := runProgram(t, Options{},
		ast.Say(ast.Str("side effect")),
		ast.Let("x", "Int", ast.Str("nope")),
	)
	if err == nil {
		t.Fatalf("expected a static error")
	}
	var d *diag.Error
	if !errors.As(err, &d) || d.Kind != diag.KindType {
		t.Fatalf("expected a type error, got %v", err)
	}
	wantOutput(t, out)
}

func TestNumericWideningAtRuntime(t *testing.T) {
	out := mustRun(t,
		ast.Say(ast.Bin("+", ast.Int(1), ast.Dbl(2.5))),
		ast.Say(ast.Bin("/", ast.Int(7), ast.Int(2))),
		ast.Say(ast.Bin("%", ast.Int(7), ast.Int(3))),
	)
	wantOutput(t, out, "3.5", "3", "1")
}

func TestFloatingRemainder(t *testing.T) {
	out := mustRun(t,
		ast.Let("x", "Double", ast.Bin("%", ast.Dbl(5.5), ast.Dbl(2.0))),
		ast.Say(ast.ID("x")),
		ast.Say(ast.Bin("%", ast.Flt(7.5), ast.Flt(2))),
	)
	wantOutput(t, out, "1.5", "1.5")
}

func TestMixedNumericEquality(t *testing.T) {
	out := mustRun(t,
		ast.Say(ast.Bin("==", ast.Int(1), ast.Lng(1))),
		ast.Say(ast.Bin("==", ast.Int(1), ast.Lng(2))),
		ast.Say(ast.Bin("==", ast.Int(2), ast.Dbl(2.0))),
		ast.Say(ast.Bin("!=", ast.Lng(3), ast.Flt(3))),
	)
	wantOutput(t, out, "true", "false", "true", "false")
}

func TestLongComparisonStaysExact(t *testing.T) {
	// 2^53 + 1 and 2^53 collapse to the same float64.
	out := mustRun(t,
		ast.Say(ast.Bin(">", ast.Lng(9007199254740993), ast.Lng(9007199254740992))),
		ast.Say(ast.Bin("<", ast.Lng(9007199254740993), ast.Lng(9007199254740992))),
		ast.Say(ast.Bin("==", ast.Lng(9007199254740993), ast.Lng(9007199254740992))),
	)
	wantOutput(t, out, "true", "false", "false")
}

func TestOptionalNopawTestAtRuntime(t *testing.T) {
	out := mustRun(t,
		ast.Let("x", "Int?", ast.Int(5)),
		ast.Say(ast.Bin("==", ast.ID("x"), ast.Nopaw())),
		ast.Assign("x", ast.Nopaw()),
		ast.Say(ast.Bin("==", ast.ID("x"), ast.Nopaw())),
		ast.Say(ast.Bin("!=", ast.Nopaw(), ast.ID("x"))),
	)
	wantOutput(t, out, "false", "true", "false")
}

func TestCastTruncatesAndStringifies(t *testing.T) {
	out := mustRun(t,
		ast.Say(ast.Cast(ast.Dbl(3.9), "Int")),
		ast.Say(ast.Cast(ast.Int(42), "String")),
		ast.Say(ast.Cast(ast.Int(3), "Double")),
	)
	wantOutput(t, out, "3", "42", "3")
}

func TestStringMethodsAtRuntime(t *testing.T) {
	out := mustRun(t,
		ast.Let("s", "String", ast.Str("  Woof  ")),
		ast.Say(ast.Method(ast.ID("s"), "trim")),
		ast.Say(ast.Method(ast.Method(ast.ID("s"), "trim"), "to_uppercase")),
		ast.Say(ast.Method(ast.Str("héllo"), "length")),
		ast.Say(ast.Method(ast.Str("woof"), "starts_with", ast.Str("wo"))),
	)
	wantOutput(t, out, "Woof", "WOOF", "5", "true")
}

func TestRecordInitAndFieldAccess(t *testing.T) {
	out := mustRun(t,
		ast.RecordDecl("Dog", ast.Fld("name", "String"), ast.Fld("age", "Int")),
		ast.Let("d", "Dog", ast.RecInit("Dog",
			ast.FieldV("name", ast.Str("rex")),
			ast.FieldV("age", ast.Int(3)),
		)),
		ast.Say(ast.Field(ast.ID("d"), "name")),
		ast.Say(ast.ID("d")),
	)
	wantOutput(t, out, "rex", "{name: rex, age: 3}")
}

type stubLoader struct {
	modules map[string][]ast.Statement
}

func (l *stubLoader) LoadModule(segments []string, fromDir string) ([]ast.Statement, string, error) {
	key := strings.Join(segments, ".")
	stmts, ok := l.modules[key]
	if !ok {
		return nil, "", diag.Internalf("module %s not found", key)
	}
	return stmts, key + ".paw", nil
}

func TestImportBindsModuleExports(t *testing.T) {
	loader := &stubLoader{modules: map[string][]ast.Statement{
		"pets.utils": {
			ast.Fun("helper", nil, "Int", ast.Ret(ast.Int(41))),
			ast.Let("version", "Int", ast.Int(1)),
		},
	}}
	out, err := runProgram(t, Options{Loader: loader},
		ast.Import("utils", "pets", "utils"),
		ast.Say(ast.Method(ast.ID("utils"), "helper")),
		ast.Say(ast.Field(ast.ID("utils"), "version")),
	)
	if err != nil {
		t.Fatalf("program failed: %v", err)
	}
	wantOutput(t, out, "41", "1")
}

func TestImportOfIllTypedModuleFails(t *testing.T) {
	loader := &stubLoader{modules: map[string][]ast.Statement{
		"broken": {ast.Let("x", "Int", ast.Str("no"))},
	}}
	_, err := runProgram(t, Options{Loader: loader}, ast.Import("b", "broken"))
	if err == nil {
		t.Fatalf("expected the imported module's type error to surface")
	}
	var d *diag.Error
	if !errors.As(err, &d) || d.Kind != diag.KindType {
		t.Fatalf("expected a type error, got %v", err)
	}
}

func TestStrayBreakOutsideCheckedProgram(t *testing.T) {
	interp := New(Options{Stdout: &bytes.Buffer{}})
	err := interp.EvaluateProgram([]ast.Statement{ast.Brk()})
	if err == nil {
		t.Fatalf("expected stray break to surface")
	}
	var d *diag.Error
	if !errors.As(err, &d) || d.Kind != diag.KindRuntime {
		t.Fatalf("expected a runtime error, got %v", err)
	}
}

func TestRuntimeErrorCarriesPositionAndFile(t *testing.T) {
	stmt := ast.At(ast.Bark(ast.Str("ouch")), 7, 2)
	_, err := runProgram(t, Options{File: "main.paw"}, stmt)
	var d *diag.Error
	if !errors.As(err, &d) {
		t.Fatalf("expected structured error, got %v", err)
	}
	if d.Line != 7 || d.Column != 2 || d.File != "main.paw" {
		t.Fatalf("position not carried: %+v", d)
	}
}
