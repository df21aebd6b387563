package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) invite(email string) error {
	inv, err := cli.invSvc.Issue(context.Background(), email, "")
	if err != nil {
		return err
	}
	fmt.Printf("invitation sent to %s (expires %s)\n", inv.Email, inv.ExpiresAt.Format("2006-01-02 15:04"))
	return nil
}
