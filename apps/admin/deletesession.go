package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core/session"
	"github.com/trezcool/masomo-calendar/core/user"
)

func (cli *commandLine) deleteSession(id string, scope session.Scope, yes bool) error {
	ctx := user.NewContext(context.Background(), user.System)

	inst, err := cli.svc.GetInstance(ctx, id)
	if err != nil {
		return err
	}

	if !yes {
		if !isTerminalFunc(cli.stdinFd) {
			return errors.New("not a terminal: pass -yes to delete without confirmation")
		}
		fmt.Fprintf(cli.out, "Delete %q of %s (%s)? [y/N] ", inst.Title, inst.Date.Format("2006-01-02"), scope)
		answer, _ := bufio.NewReader(cli.in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return errAborted
		}
	}

	out, err := cli.svc.Delete(ctx, id, scope)
	notice := session.NoticeFor(session.OpDelete, err)
	fmt.Fprintf(cli.out, "%s (%d session(s))\n", notice.Message, out.Instances)
	return err
}
