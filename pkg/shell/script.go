package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"src.rtorc.sh/pkg/diag"
	"src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/parse"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd  bool
	JSON bool
}

// Runs a script, which is a file name or, with -c, the code itself.
func script(ev *eval.Evaler, fds [3]*os.File, arg string, cfg *scriptCfg) int {
	name, code, ok := readScript(fds, arg, cfg)
	if !ok {
		return 2
	}
	if err := ev.Source(name, strings.NewReader(code)); err != nil {
		diag.ShowError(fds[2], err)
		return 2
	}
	return 0
}

// Parses a script without running it.
func check(fds [3]*os.File, arg string, cfg *scriptCfg) int {
	name, code, ok := readScript(fds, arg, cfg)
	if !ok {
		return 2
	}
	errs := checkCode(name, code)
	if cfg.JSON {
		fmt.Fprintf(fds[1], "%s\n", errorsToJSON(errs))
	} else {
		for _, e := range errs {
			diag.ShowError(fds[2], e.err)
		}
	}
	if len(errs) > 0 {
		return 2
	}
	return 0
}

func readScript(fds [3]*os.File, arg string, cfg *scriptCfg) (name, code string, ok bool) {
	if cfg.Cmd {
		return "code from -c", arg, true
	}
	name, err := filepath.Abs(arg)
	if err != nil {
		fmt.Fprintf(fds[2], "cannot get full path of script %q: %v\n", arg, err)
		return "", "", false
	}
	code, err = readFileUTF8(name)
	if err != nil {
		fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
		return "", "", false
	}
	return name, code, true
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// A parse error in a line that starts at from.
type lineError struct {
	from int
	err  *parse.Error
}

// Parses every line of code, collecting the errors.
func checkCode(name, code string) []lineError {
	var errs []lineError
	for _, line := range parse.SplitLines(code) {
		_, err := parse.ParseStatements(parse.Source{Name: name, Code: line.Code})
		var parseErr *parse.Error
		if errors.As(err, &parseErr) {
			errs = append(errs, lineError{line.From, parseErr})
		}
	}
	return errs
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts parse errors into JSON. Positions are byte offsets into the script.
func errorsToJSON(errs []lineError) []byte {
	converted := []errorInJSON{}
	for _, e := range errs {
		r := e.err.Range()
		converted = append(converted,
			errorInJSON{e.err.Context.Name, e.from + r.From, e.from + r.To, e.err.Message})
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
