package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) generateFees(studentID int) error {
	fees, err := cli.fees.GenerateForStudent(context.Background(), studentID, "")
	if err != nil {
		return err
	}
	fmt.Printf("%d monthly fees generated for student %d.\n", len(fees), studentID)
	return nil
}
