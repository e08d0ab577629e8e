package console

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	*Session
	Interactive bool

	Shell *ishell.Shell
}

const (
	sessionKey = "$session"
	prompt     = "dma > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&PrintCmd,
		&PrintlnCmd,
		&ReadCmd,
		&EchoCmd,
		&StatsCmd,
		&CapCmd,
		&PendingCmd,
		&InjectCmd,
		&SentCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(session *Session) *Shell {
	session.OutputJSON = session.OutputJSON || outputJSON
	s := &Shell{
		Session:     session,
		Interactive: !evalOnly,
		Shell:       ishell.New(),
	}
	s.Shell.Set(sessionKey, session)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// SessionFrom gets Session from ishell context.
func SessionFrom(c *ishell.Context) *Session {
	return c.Get(sessionKey).(*Session)
}

// Run runs the shell. With args, it only executes them as one command.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}

var (
	// PrintCmd queues text for transmission.
	PrintCmd = ishell.Cmd{
		Name:    "print",
		Aliases: []string{"p"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			if _, err := SessionFrom(c).Print(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		},
	}

	// PrintlnCmd queues a line for transmission.
	PrintlnCmd = ishell.Cmd{
		Name:    "println",
		Aliases: []string{"pl"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			if _, err := SessionFrom(c).Print(strings.Join(c.Args, " ") + "\r\n"); err != nil {
				c.Err(err)
			}
		},
	}

	// ReadCmd reads a line.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "[TIMEOUT] [MAXLEN]",
		Func: func(c *ishell.Context) {
			timeout, maxLen := DefaultReadTimeout, 256
			if len(c.Args) > 0 {
				d, err := time.ParseDuration(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("Invalid TIMEOUT: %v", err))
					return
				}
				timeout = d
			}
			if len(c.Args) > 1 {
				n, err := strconv.Atoi(c.Args[1])
				if err != nil || n <= 0 {
					c.Err(fmt.Errorf("Invalid MAXLEN: %q", c.Args[1]))
					return
				}
				maxLen = n
			}
			line, err := SessionFrom(c).ReadLine(context.Background(), maxLen, timeout)
			if line != "" {
				c.Println(strconv.Quote(line))
			}
			if err != nil {
				c.Err(err)
			}
		},
	}

	// EchoCmd switches echo.
	EchoCmd = ishell.Cmd{
		Name: "echo",
		Help: "[on|off]",
		Func: func(c *ishell.Context) {
			s := SessionFrom(c)
			if len(c.Args) == 0 {
				c.Println(map[bool]string{true: "on", false: "off"}[s.Transport.Echo()])
				return
			}
			if err := s.SetEcho(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// StatsCmd prints transport stats.
	StatsCmd = ishell.Cmd{
		Name:    "stats",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			out, err := SessionFrom(c).FormatStats()
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		},
	}

	// CapCmd prints the ring capacity.
	CapCmd = ishell.Cmd{
		Name: "cap",
		Help: "",
		Func: func(c *ishell.Context) {
			c.Println(SessionFrom(c).Transport.BufferCapacity())
		},
	}

	// PendingCmd prints bytes waiting in the rings.
	PendingCmd = ishell.Cmd{
		Name: "pending",
		Help: "",
		Func: func(c *ishell.Context) {
			c.Println(SessionFrom(c).FormatPending())
		},
	}

	// InjectCmd simulates a line arriving on the wire.
	InjectCmd = ishell.Cmd{
		Name:    "inject",
		Aliases: []string{"i"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			n, err := SessionFrom(c).Inject(strings.Join(c.Args, " ") + "\r")
			if err != nil {
				c.Err(err)
				return
			}
			glog.V(1).Infof("injected %d bytes", n)
		},
	}

	// SentCmd prints everything a simulated device transmitted.
	SentCmd = ishell.Cmd{
		Name: "sent",
		Help: "",
		Func: func(c *ishell.Context) {
			sent, err := SessionFrom(c).Sent()
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(strconv.Quote(string(sent)))
		},
	}
)
