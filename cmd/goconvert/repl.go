package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	goConvert "github.com/MrEthical07/goConvert"
	"github.com/MrEthical07/goConvert/converter"
	"github.com/MrEthical07/goConvert/metrics/export/prometheus"
)

var errQuit = errors.New("quit")

type command struct {
	name string
	args []string
}

var arity = map[string]int{
	"login":   2,
	"logout":  0,
	"amount":  1,
	"from":    1,
	"to":      1,
	"switch":  0,
	"flush":   0,
	"status":  0,
	"banner":  0,
	"dismiss": 0,
	"metrics": 0,
	"help":    0,
	"quit":    0,
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, nil
	}
	name := strings.ToLower(fields[0])
	if name == "exit" {
		name = "quit"
	}
	want, ok := arity[name]
	if !ok {
		return command{}, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	args := fields[1:]
	// amounts may be typed with spaces, e.g. "1 000"
	if name == "amount" && len(args) > 1 {
		args = []string{strings.Join(args, "")}
	}
	if len(args) != want {
		return command{}, fmt.Errorf("%s takes %d argument(s)", name, want)
	}
	return command{name: name, args: args}, nil
}

// console is the interactive front end over one Client.
type console struct {
	client *goConvert.Client
	form   *goConvert.LoginForm
	conv   *converter.Converter

	mu  sync.Mutex
	out io.Writer
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

// attach mounts the converter and the login form. The form navigates at once
// when a restored token is already held.
func (c *console) attach(client *goConvert.Client, destination string, currencies []string) error {
	conv, err := client.Converter(currencies, c.viewChanged)
	if err != nil {
		return err
	}
	c.client = client
	c.conv = conv
	c.form = client.LoginForm(destination)
	return nil
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) viewChanged(v converter.View) {
	if v.Pending {
		return
	}
	c.printf("= %s\n", v.Display)
}

func (c *console) navigate(destination string) {
	c.printf("-> %s\n", destination)
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		c.printf("> ")
		if !scanner.Scan() {
			c.printf("\n")
			return scanner.Err()
		}
		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			c.printf("error: %v\n", err)
			continue
		}
		if cmd.name == "" {
			continue
		}
		if err := c.execute(ctx, cmd); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			c.printf("error: %v\n", err)
		}
	}
}

func (c *console) execute(ctx context.Context, cmd command) error {
	switch cmd.name {
	case "login":
		c.form.SetUsername(cmd.args[0])
		c.form.SetPassword(cmd.args[1])
		res := c.form.Submit(ctx)
		c.printf("%s\n", res.Status)
		if b := c.form.Banner(); b.Visible {
			c.printf("! %s\n", b.Message)
		}
	case "logout":
		return c.client.Logout(ctx)
	case "amount":
		c.conv.SetAmountText(cmd.args[0])
	case "from":
		return c.conv.SetFrom(cmd.args[0])
	case "to":
		return c.conv.SetTo(cmd.args[0])
	case "switch":
		c.conv.Switch()
	case "flush":
		c.conv.Flush()
	case "status":
		v := c.conv.View()
		state := "ready"
		if v.Pending {
			state = "pending"
		}
		c.printf("%s [%s] authenticated=%t\n", v.Display, state, c.client.Session().Authenticated())
	case "banner":
		b := c.form.Banner()
		if !b.Visible {
			c.printf("(no banner)\n")
			return nil
		}
		c.printf("! %s (%s-%s)\n", b.Message, b.Vertical, b.Horizontal)
	case "dismiss":
		c.form.DismissBanner()
	case "metrics":
		c.printf("%s", prometheus.NewExporter(c.client).Render())
	case "help":
		c.printf("commands: login <user> <pass>, logout, amount <n>, from <code>, to <code>, switch, flush, status, banner, dismiss, metrics, quit\n")
	case "quit":
		return errQuit
	}
	return nil
}
