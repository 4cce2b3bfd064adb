package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/safescrow/dashboard/pkg/apiclient"
	"github.com/safescrow/dashboard/pkg/authapi"
)

func (s *Session) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(s.stderr)
	return fs
}

func runLogin(ctx context.Context, s *Session, args []string) error {
	fs := s.flagSet("login")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr, err := s.valueOrPrompt(*email, "Email")
	if err != nil {
		return err
	}
	password, err := s.promptPassword("Password")
	if err != nil {
		return err
	}

	if err := s.Manager.Login(ctx, authapi.LoginRequest{Email: addr, Password: password}); err != nil {
		return err
	}
	return s.printSignedIn()
}

func runRegister(ctx context.Context, s *Session, args []string) error {
	fs := s.flagSet("register")
	email := fs.String("email", "", "account email")
	nin := fs.String("nin", "", "national identification number")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := authapi.RegisterRequest{}
	var err error
	if req.Email, err = s.valueOrPrompt(*email, "Email"); err != nil {
		return err
	}
	if req.NIN, err = s.valueOrPrompt(*nin, "NIN"); err != nil {
		return err
	}
	if req.FullName, err = s.valueOrPrompt(*name, "Full name"); err != nil {
		return err
	}
	if req.PhoneNumber, err = s.valueOrPrompt(*phone, "Phone number"); err != nil {
		return err
	}
	if req.Password, err = s.promptPassword("Password"); err != nil {
		return err
	}
	if req.Password2, err = s.promptPassword("Repeat password"); err != nil {
		return err
	}

	if err := s.Manager.Register(ctx, req); err != nil {
		return err
	}
	return s.printSignedIn()
}

func runLogout(ctx context.Context, s *Session, _ []string) error {
	if err := s.Manager.Logout(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(s.stdout, "Signed out.")
	return err
}

func runWhoami(_ context.Context, s *Session, _ []string) error {
	p, _ := s.Manager.Profile()

	tw := tabwriter.NewWriter(s.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Email:\t%s\n", p.Email)
	fmt.Fprintf(tw, "Name:\t%s\n", p.FullName)
	fmt.Fprintf(tw, "Phone:\t%s\n", p.PhoneNumber)
	fmt.Fprintf(tw, "Wallet:\t%s\n", p.WalletBalance)
	fmt.Fprintf(tw, "In escrow:\t%s\n", p.EscrowBalance)
	fmt.Fprintf(tw, "Pending:\t%d\n", p.PendingTransactions)
	if deadline, ok := s.Manager.RefreshDeadline(); ok {
		fmt.Fprintf(tw, "Renews at:\t%s\n", deadline.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runRefresh(ctx context.Context, s *Session, _ []string) error {
	if !s.Manager.RefreshToken(ctx) {
		return ErrNotSignedIn
	}
	deadline, ok := s.Manager.RefreshDeadline()
	if !ok {
		_, err := fmt.Fprintln(s.stdout, "Token renewed.")
		return err
	}
	_, err := fmt.Fprintf(s.stdout, "Token renewed; next renewal at %s.\n", deadline.Local().Format(time.DateTime))
	return err
}

func runOrders(ctx context.Context, s *Session, args []string) error {
	fs := s.flagSet("orders")
	all := fs.Bool("all", false, "include escrows where you are the recipient")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		escrows []apiclient.Escrow
		err     error
	)
	if *all {
		escrows, err = s.API.UserEscrows(ctx)
	} else {
		escrows, err = s.API.ListEscrows(ctx)
	}
	if err != nil {
		return err
	}

	if len(escrows) == 0 {
		_, err := fmt.Fprintln(s.stdout, "No escrows.")
		return err
	}

	tw := tabwriter.NewWriter(s.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tAMOUNT\tFROM\tTO\tCREATED")
	for _, e := range escrows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			e.ID, e.Status, e.Amount, e.SenderEmail, e.RecipientEmail,
			e.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runOrder(ctx context.Context, s *Session, args []string) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	e, err := s.API.GetEscrow(ctx, id)
	if err != nil {
		return err
	}
	return s.printEscrow(e)
}

func runCreateOrder(ctx context.Context, s *Session, args []string) error {
	fs := s.flagSet("create-order")
	req := apiclient.CreateEscrowRequest{}
	fs.Float64Var(&req.Amount, "amount", 0, "amount in naira")
	fs.StringVar(&req.RecipientEmail, "to", "", "recipient email")
	fs.StringVar(&req.Description, "desc", "", "what the payment is for")
	fs.StringVar(&req.Conditions, "conditions", "", "release conditions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := s.API.CreateEscrow(ctx, req)
	if err != nil {
		return err
	}
	return s.printEscrow(e)
}

func runRelease(ctx context.Context, s *Session, args []string) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	e, err := s.API.ReleaseEscrow(ctx, id)
	if err != nil {
		return err
	}
	return s.printEscrow(e)
}

func runCancel(ctx context.Context, s *Session, args []string) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	e, err := s.API.CancelEscrow(ctx, id)
	if err != nil {
		return err
	}
	return s.printEscrow(e)
}

func runUpdateOrder(ctx context.Context, s *Session, args []string) error {
	fs := s.flagSet("update-order")
	desc := fs.String("desc", "", "what the payment is for")
	conditions := fs.String("conditions", "", "release conditions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := singleID(fs.Args())
	if err != nil {
		return err
	}

	var req apiclient.UpdateEscrowRequest
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "desc":
			req.Description = desc
		case "conditions":
			req.Conditions = conditions
		}
	})
	if req.Description == nil && req.Conditions == nil {
		return fmt.Errorf("%w: set -desc or -conditions", ErrMissingValue)
	}

	e, err := s.API.UpdateEscrow(ctx, id, req)
	if err != nil {
		return err
	}
	return s.printEscrow(e)
}

func runSetProfile(ctx context.Context, s *Session, args []string) error {
	fs := s.flagSet("set-profile")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	current, _ := s.Manager.Profile()
	req := authapi.UpdateProfileRequest{FullName: current.FullName, PhoneNumber: current.PhoneNumber}
	if *name != "" {
		req.FullName = *name
	}
	if *phone != "" {
		req.PhoneNumber = *phone
	}

	p, err := s.API.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.stdout, "Profile updated: %s, %s.\n", p.FullName, p.PhoneNumber)
	return err
}

func runPasswd(ctx context.Context, s *Session, _ []string) error {
	var req authapi.ChangePasswordRequest
	var err error
	if req.CurrentPassword, err = s.promptPassword("Current password"); err != nil {
		return err
	}
	if req.NewPassword, err = s.promptPassword("New password"); err != nil {
		return err
	}
	repeat, err := s.promptPassword("Repeat new password")
	if err != nil {
		return err
	}
	if repeat != req.NewPassword {
		return fmt.Errorf("%w: passwords do not match", ErrMissingValue)
	}

	if err := s.API.ChangePassword(ctx, req); err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.stdout, "Password changed.")
	return err
}

func singleID(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%w: expected exactly one escrow ID", ErrMissingValue)
	}
	return args[0], nil
}

func (s *Session) printSignedIn() error {
	p, _ := s.Manager.Profile()
	_, err := fmt.Fprintf(s.stdout, "Signed in as %s (%s).\n", p.Email, p.FullName)
	return err
}

func (s *Session) printEscrow(e *apiclient.Escrow) error {
	tw := tabwriter.NewWriter(s.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", e.ID)
	fmt.Fprintf(tw, "Status:\t%s\n", e.Status)
	fmt.Fprintf(tw, "Amount:\t%.2f\n", e.Amount)
	fmt.Fprintf(tw, "From:\t%s\n", e.SenderEmail)
	fmt.Fprintf(tw, "To:\t%s\n", e.RecipientEmail)
	if e.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", e.Description)
	}
	if e.Conditions != "" {
		fmt.Fprintf(tw, "Conditions:\t%s\n", e.Conditions)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", e.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "Updated:\t%s\n", e.UpdatedAt.Local().Format(time.DateTime))
	return tw.Flush()
}
