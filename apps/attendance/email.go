package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

var confirmFunc = promptConfirm // mockable

// promptConfirm asks for an explicit "y" on the terminal. Anything else, or a
// non-interactive stdin, declines.
func promptConfirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "stdin is not a terminal; pass -yes to confirm")
		return false, nil
	}
	fmt.Printf("%s y/[N]: ", prompt)
	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(input), "y"), nil
}

func (cli *commandLine) emailUnexcused(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("email-unexcused", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Send without prompting for confirmation.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, err := cli.attSvc.PreviewNotification(ctx)
	if err != nil {
		return err
	}
	if len(n.Recipients) == 0 {
		fmt.Println("No unexcused absentees to email.")
		return nil
	}

	fmt.Printf("Will email the following students for week %d:\n", n.Week)
	for _, s := range n.Recipients {
		fmt.Printf("  %s <%s>\n", s.ID, s.Email)
	}
	if len(n.Cc) > 0 {
		ccs := make([]string, 0, len(n.Cc))
		for _, cc := range n.Cc {
			ccs = append(ccs, cc.Address)
		}
		fmt.Printf("CC: %s\n", strings.Join(ccs, ", "))
	}
	fmt.Printf("Subject: %s\n---\n%s---\n", n.Subject, n.Body)

	confirmed := *yes
	if !confirmed {
		if confirmed, err = confirmFunc("Proceed?"); err != nil {
			return err
		}
	}
	if !confirmed {
		if err := n.Abort(); err != nil {
			return err
		}
		fmt.Println("Emailing canceled!")
		return nil
	}

	if err := n.Confirm(); err != nil {
		return err
	}
	rep, err := cli.attSvc.SendNotification(ctx, n)
	if err != nil {
		return err
	}

	fmt.Printf("Sent %d email(s), %d failed.\n", rep.Sent, rep.Failed)
	if rep.Failed > 0 {
		for _, d := range rep.Deliveries {
			if d.Err != nil {
				cli.logger.Error(fmt.Sprintf("delivery %s to %s failed: %v", d.MessageID, d.Student.Email, d.Err))
			}
		}
		return fmt.Errorf("%d of %d deliveries failed; re-run email-unexcused to retry", rep.Failed, len(rep.Deliveries))
	}
	return nil
}
