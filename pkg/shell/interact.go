package shell

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"src.rtorc.sh/pkg/diag"
	"src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/store/storedefs"
	"src.rtorc.sh/pkg/target"
)

// Runs statements read from the editor until EOF. The result of each
// statement is shown unless it is None. Statements are added to hist when it
// is not nil.
func interact(fds [3]*os.File, ev *eval.Evaler, ed editor, hist storedefs.Store) {
	cooldown := time.Second
	cmdNum := 0

	for {
		cmdNum++

		code, err := ed.readCode()
		if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			if _, isMinEditor := ed.(*minEditor); !isMinEditor {
				fmt.Fprintln(fds[2], "Falling back to basic line editor")
				ed.close()
				ed = newMinEditor(fds[0], fds[2])
			} else {
				fmt.Fprintln(fds[2], "Don't know what to do, pid is", os.Getpid())
				fmt.Fprintln(fds[2], "Restarting editor in", cooldown)
				time.Sleep(cooldown)
				if cooldown < time.Minute {
					cooldown *= 2
				}
			}
			continue
		}

		// No error; reset cooldown.
		cooldown = time.Second

		if strings.TrimSpace(code) == "" {
			continue
		}
		ed.addHistory(code)
		if hist != nil {
			if _, err := hist.AddCmd(code); err != nil {
				logger.Println("cannot add to history:", err)
			}
		}

		result, err := ev.Exec(target.None(),
			parse.Source{Name: fmt.Sprintf("[tty %v]", cmdNum), Code: code})
		if err != nil {
			diag.ShowError(fds[2], err)
			continue
		}
		if !result.IsNone() {
			fmt.Fprintln(fds[1], parse.Repr(result))
		}
	}
}
