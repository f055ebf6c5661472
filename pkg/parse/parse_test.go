package parse

import (
	"errors"
	"testing"

	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/tt"
)

var (
	Args = tt.Args
	Any  = tt.Any

	str  = obj.NewString
	list = obj.NewList
	call = obj.NewCall
	none = obj.None()
)

func strs(ss ...string) obj.Object { return obj.NewStringList(ss...) }

func TestParseString(t *testing.T) {
	tt.Test(t, tt.Fn("ParseString", ParseString).ArgsFmt("(%q, %d, ...)"), tt.Table{
		Args("abc,def", 0, Delim(IsDelim)).Rets("abc", 3, nil),
		Args("abc def", 0, Delim(IsDelim)).Rets("abc", 3, nil),
		Args("abc,def", 4, Delim(IsDelim)).Rets("def", 7, nil),
		Args("ab}c", 0, Delim(IsListDelim)).Rets("ab", 2, nil),
		Args("ab}c", 0, Delim(IsDelim)).Rets("ab}c", 4, nil),
		// Quoted strings extend over delimiters.
		Args(`"a, b}",c`, 0, Delim(IsListDelim)).Rets("a, b}", 7, nil),
		// Escapes copy the next character literally.
		Args(`a\,b,c`, 0, Delim(IsDelim)).Rets("a,b", 4, nil),
		Args(`"a\"b"`, 0, Delim(IsDelim)).Rets(`a"b`, 6, nil),
		Args(`a\\b`, 0, Delim(IsDelim)).Rets(`a\b`, 4, nil),
		// Empty input.
		Args("", 0, Delim(IsDelim)).Rets("", 0, nil),

		Args(`"abc`, 0, Delim(IsDelim)).Rets("", Any, tt.ErrorIs(UnterminatedQuote)),
		Args(`abc\`, 0, Delim(IsDelim)).Rets("", Any, tt.ErrorIs(DanglingEscape)),
		Args(`"abc\`, 0, Delim(IsDelim)).Rets("", Any, tt.ErrorIs(DanglingEscape)),
	})
}

func TestParseWholeList(t *testing.T) {
	tt.Test(t, tt.Fn("ParseWholeList", ParseWholeList).ArgsFmt("(%q)"), tt.Table{
		Args(`a,"b,c",{d,e}`).Rets(list(str("a"), str("b,c"), strs("d", "e")), nil),
		Args("").Rets(list(), nil),
		Args("   ").Rets(list(), nil),
		Args(" a , b ").Rets(strs("a", "b"), nil),
		Args("{}").Rets(list(list()), nil),
		Args("{ }").Rets(list(list()), nil),
		Args("a,,b").Rets(strs("a", "", "b"), nil),
		Args("{a,}").Rets(list(strs("a", "")), nil),
		Args("{{a},{b,{c}}}").Rets(
			list(list(strs("a"), list(str("b"), strs("c")))), nil),
		// $ lowers to a Call; quoted text is literal.
		Args("$d.name=,x").Rets(list(call("d.name", none), str("x")), nil),
		Args("$d.name").Rets(list(call("d.name", none)), nil),
		Args("$cat={a,b},c").Rets(list(call("cat", strs("a", "b")), str("c")), nil),
		Args("$cat=$d.name=").Rets(list(call("cat", call("d.name", none))), nil),
		Args(`"$cat=a"`).Rets(strs("$cat=a"), nil),
		Args(`\$cat`).Rets(strs("$cat"), nil),

		Args("{a,b").Rets(none, tt.ErrorIs(UnclosedBrace)),
		Args("{a,{b}").Rets(none, tt.ErrorIs(UnclosedBrace)),
		Args("a b").Rets(none, tt.ErrorIs(TrailingGarbage)),
		Args(`"a"b`).Rets(none, tt.ErrorIs(TrailingGarbage)),
		Args("$1x").Rets(none, tt.ErrorIs(InvalidIdentifier)),
		Args("$x+y").Rets(none, tt.ErrorIs(InvalidIdentifier)),
	})
}

func TestParseObjectAndList(t *testing.T) {
	tt.Test(t, tt.Fn("ParseObject", ParseObject).ArgsFmt("(%q, %d, ...)"), tt.Table{
		Args("{a,b} rest", 0, Delim(IsDelim)).Rets(strs("a", "b"), 5, nil),
		Args("x,y", 0, Delim(IsDelim)).Rets(str("x"), 1, nil),
	})
	// A list stops at the first item not followed by a comma.
	tt.Test(t, tt.Fn("ParseList", ParseList).ArgsFmt("(%q, %d, ...)"), tt.Table{
		Args("a,b c", 0, Delim(IsDelim)).Rets(strs("a", "b"), 4, nil),
	})
}

func TestParseWholeObjectAndString(t *testing.T) {
	tt.Test(t, tt.Fn("ParseWholeObject", ParseWholeObject), tt.Table{
		Args(" {a} ").Rets(strs("a"), nil),
		Args("").Rets(none, nil),
		Args("a,b").Rets(none, tt.ErrorIs(TrailingGarbage)),
	})
	tt.Test(t, tt.Fn("ParseWholeString", ParseWholeString), tt.Table{
		Args(` "a b" `).Rets("a b", nil),
		Args("a b").Rets("", tt.ErrorIs(TrailingGarbage)),
	})
}

func TestParseValue(t *testing.T) {
	tt.Test(t, tt.Fn("ParseValue", ParseValue).ArgsFmt("(%q, %d, %d)"), tt.Table{
		Args("4k", 0, int64(1)).Rets(int64(4096), nil),
		Args("2m", 0, int64(1)).Rets(int64(2097152), nil),
		Args("1G", 0, int64(1)).Rets(int64(1<<30), nil),
		Args("7B", 0, int64(1)).Rets(int64(7), nil),
		Args("yes", 0, int64(1)).Rets(int64(1), nil),
		Args("TRUE", 0, int64(1)).Rets(int64(1), nil),
		Args("no", 0, int64(1)).Rets(int64(0), nil),
		Args("false", 0, int64(1)).Rets(int64(0), nil),
		Args("42", 0, int64(1)).Rets(int64(42), nil),
		Args(" -42 ", 0, int64(1)).Rets(int64(-42), nil),
		Args("+3", 0, int64(1)).Rets(int64(3), nil),
		Args("0x1F", 0, int64(1)).Rets(int64(31), nil),
		Args("010", 0, int64(1)).Rets(int64(8), nil),
		Args("010", 10, int64(1)).Rets(int64(10), nil),
		Args("ff", 16, int64(1)).Rets(int64(255), nil),
		Args("0", 0, int64(1)).Rets(int64(0), nil),
		// Bare numbers are scaled by the unit; a suffix overrides it.
		Args("3", 0, int64(1024)).Rets(int64(3072), nil),
		Args("3b", 0, int64(1024)).Rets(int64(3), nil),

		Args("abc", 0, int64(1)).Rets(int64(0), tt.ErrorIs(NotANumber)),
		Args("", 0, int64(1)).Rets(int64(0), tt.ErrorIs(NotANumber)),
		Args("yesterday", 0, int64(1)).Rets(int64(0), tt.ErrorIs(NotANumber)),
		Args("12x", 0, int64(1)).Rets(int64(0), tt.ErrorIs(TrailingGarbage)),
		Args("99999999999999999999", 0, int64(1)).Rets(int64(0), tt.ErrorIs(NotANumber)),
		Args("9223372036854775807g", 0, int64(1)).Rets(int64(0), tt.ErrorIs(NotANumber)),
	})
}

func TestParseValuePrefix(t *testing.T) {
	tt.Test(t, tt.Fn("ParseValuePrefix", ParseValuePrefix), tt.Table{
		Args("12k,rest", 0, 0, int64(1)).Rets(int64(12288), 3, nil),
		Args("x=5", 2, 0, int64(1)).Rets(int64(5), 3, nil),
	})
}

func TestParseCommandName(t *testing.T) {
	tt.Test(t, tt.Fn("ParseCommandName", ParseCommandName), tt.Table{
		Args("d.name=", 0).Rets("d.name", 6, nil),
		Args("method_x.y2 z", 0).Rets("method_x.y2", 11, nil),
		Args("1abc", 0).Rets("", 0, tt.ErrorIs(InvalidIdentifier)),
		Args("", 0).Rets("", 0, tt.ErrorIs(InvalidIdentifier)),
	})
}

func TestParseStatement(t *testing.T) {
	parseCode := func(code string) (obj.Object, error) {
		return ParseStatement(Source{Name: "[test]", Code: code})
	}
	tt.Test(t, tt.Fn("ParseStatement", parseCode).ArgsFmt("(%q)"), tt.Table{
		Args("print=a,b").Rets(call("print", strs("a", "b")), nil),
		Args("  print = a , b  ").Rets(call("print", strs("a", "b")), nil),
		Args("x.val=").Rets(call("x.val", none), nil),
		Args("x.val").Rets(call("x.val", none), nil),
		Args("").Rets(none, nil),
		Args("  ").Rets(none, nil),
		// A semicolon is only special to ParseStatements.
		Args("print=a;b").Rets(call("print", str("a;b")), nil),
		// Single-argument unwrap.
		Args("cmd=5").Rets(call("cmd", str("5")), nil),
		Args("cmd={5}").Rets(call("cmd", strs("5")), nil),
		Args("cmd={a,b}").Rets(call("cmd", strs("a", "b")), nil),
		Args("cmd=a=b").Rets(call("cmd", str("a=b")), nil),
		Args("print=$cat={a,b},x").Rets(
			call("print", list(call("cat", strs("a", "b")), str("x"))), nil),

		Args("1x=2").Rets(none, tt.ErrorIs(InvalidIdentifier)),
		Args("print a").Rets(none, tt.ErrorIs(InvalidIdentifier)),
		Args(`print="a`).Rets(none, tt.ErrorIs(UnterminatedQuote)),
		Args("print=a b").Rets(none, tt.ErrorIs(TrailingGarbage)),
	})
}

func TestParseStatements(t *testing.T) {
	parseCode := func(code string) ([]obj.Object, error) {
		return ParseStatements(Source{Name: "[test]", Code: code})
	}
	tt.Test(t, tt.Fn("ParseStatements", parseCode).ArgsFmt("(%q)"), tt.Table{
		Args("print=a;print=b").Rets(
			[]obj.Object{call("print", str("a")), call("print", str("b"))}, nil),
		Args(`print="a;b"; x=`).Rets(
			[]obj.Object{call("print", str("a;b")), call("x", none)}, nil),
		Args(`print={a;b}`).Rets(
			[]obj.Object{call("print", strs("a;b"))}, nil),
		Args(`print=a\;b`).Rets(
			[]obj.Object{call("print", str("a;b"))}, nil),
		Args(" ; ;").Rets([]obj.Object(nil), nil),
		// Quotes and braces inside a bare item are literal.
		Args(`print=a"b;print=c`).Rets(
			[]obj.Object{call("print", str(`a"b`)), call("print", str("c"))}, nil),
		Args(`print=a{b;print=c`).Rets(
			[]obj.Object{call("print", str("a{b")), call("print", str("c"))}, nil),
		Args("print=$d.name=;x").Rets(
			[]obj.Object{call("print", call("d.name", none)), call("x", none)}, nil),
		Args("x;y=1").Rets([]obj.Object{call("x", none), call("y", str("1"))}, nil),
		Args("print=a b;x").Rets([]obj.Object(nil), tt.ErrorIs(TrailingGarbage)),
		Args("a=1;2=b").Rets([]obj.Object(nil), tt.ErrorIs(InvalidIdentifier)),
	})
}

func TestError(t *testing.T) {
	_, err := ParseStatement(Source{Name: "rc", Code: "print={a,b"})
	if err == nil {
		t.Fatal("want error")
	}
	want := "parse error: rc:1:7: unclosed brace"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	if errs.Kind(err) != errs.KindSyntax {
		t.Errorf("parse errors should be syntax errors")
	}
	var perr *Error
	if !errors.As(err, &perr) || perr.Range().From != 6 {
		t.Errorf("error has unexpected range")
	}
}

func TestQuote_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"", "plain", "a,b", "{x}", `quo"te`, `back\slash`, "sp ace",
		"$notacall", "semi;colon", "tab\tnew\nline", `"\"`, "}{,\\",
	} {
		q := Quote(s)
		got, err := ParseWholeString(q)
		if err != nil || got != s {
			t.Errorf("ParseWholeString(Quote(%q)) = (%q, %v)", s, got, err)
		}
	}
	if q := Quote("plain"); q != "plain" {
		t.Errorf("Quote(plain) = %q, want it unquoted", q)
	}
}

func TestRepr(t *testing.T) {
	tt.Test(t, tt.Fn("Repr", Repr), tt.Table{
		Args(str("a")).Rets("a"),
		Args(obj.NewValue(-3)).Rets("-3"),
		Args(none).Rets(""),
		Args(list(str("a"), str("b,c"), strs("d", "e"))).Rets(`{a,"b,c",{d,e}}`),
		Args(obj.NewMap(map[string]obj.Object{"k": obj.NewValue(1)})).Rets("[k=1]"),
		Args(call("d.name", none)).Rets("$d.name="),
		Args(call("cat", strs("a", "b"))).Rets("$cat={a,b}"),
	})
	tt.Test(t, tt.Fn("ReprArgs", ReprArgs), tt.Table{
		Args(list(str("a"), str("b,c"), strs("d", "e"))).Rets(`a,"b,c",{d,e}`),
		Args(str("x")).Rets("x"),
	})
	tt.Test(t, tt.Fn("ReprStatement", ReprStatement), tt.Table{
		Args(call("print", strs("a", "b"))).Rets("print=a,b"),
		Args(call("print", strs("a"))).Rets("print={a}"),
		Args(call("print", list())).Rets("print={}"),
		Args(call("print", none)).Rets("print="),
		Args(call("print", str("a b"))).Rets(`print="a b"`),
	})
}

func TestRepr_RoundTrip(t *testing.T) {
	trees := []obj.Object{
		list(str("a"), str("b,c"), strs("d", "e")),
		list(),
		list(str(""), list(list()), str(`x"y`)),
		list(call("cat", strs("a", "b")), str("$x")),
	}
	for _, tree := range trees {
		text := ReprArgs(tree)
		got, err := ParseWholeList(text)
		if err != nil {
			t.Errorf("ParseWholeList(%q) errors: %v", text, err)
			continue
		}
		if !got.Equal(tree) && !(tree.Len() == 0 && got.Len() == 0) {
			t.Errorf("ParseWholeList(%q) = %v, want %v", text, got, tree)
		}
	}
	// Values come back as strings with the same rendering.
	v := list(obj.NewValue(5), str("x"))
	got, _ := ParseWholeList(ReprArgs(v))
	if ReprArgs(got) != ReprArgs(v) {
		t.Errorf("rendering of values does not round trip")
	}
}

func TestStatementRoundTrip(t *testing.T) {
	for _, code := range []string{
		"print=a,b", "print={a}", "x=", `print="a b",{c,$d.name=}`,
	} {
		stmt, err := ParseStatement(Source{Code: code})
		if err != nil {
			t.Fatal(err)
		}
		again, err := ParseStatement(Source{Code: ReprStatement(stmt)})
		if err != nil || !again.Equal(stmt) {
			t.Errorf("%q -> %q -> %v, %v", code, ReprStatement(stmt), again, err)
		}
	}
}
