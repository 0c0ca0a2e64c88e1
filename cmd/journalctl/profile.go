package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lorettarehm/audhd.ai/internal/model"
)

func newProfileCmd(opts *options) *cobra.Command {
	var name, age, kind string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
		Long: "Without flags, prints the profile. Flags change only the fields they name;\n" +
			"pass an empty value to clear a field.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.client.Profiles().GetOrCreate(cmd.Context(), s.userID())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") || flags.Changed("diagnosis-age") || flags.Changed("diagnosis-type") {
				upd := model.ProfileUpdate{FullName: p.FullName, DiagnosisAge: p.DiagnosisAge, DiagnosisType: p.DiagnosisType}
				if flags.Changed("name") {
					upd.FullName = &name
				}
				if flags.Changed("diagnosis-age") {
					if upd.DiagnosisAge, err = parseAge(age); err != nil {
						return err
					}
				}
				if flags.Changed("diagnosis-type") {
					upd.DiagnosisType = &kind
				}
				upd.Normalize()
				if p, err = s.client.Profiles().Update(cmd.Context(), s.userID(), &upd); err != nil {
					return err
				}
			}
			printProfile(cmd, p)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&age, "diagnosis-age", "", "Age at diagnosis")
	cmd.Flags().StringVar(&kind, "diagnosis-type", "", "One of ADHD, Autism, Both, Other")
	return cmd
}

func parseAge(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("diagnosis age %q is not a number", v)
	}
	return &n, nil
}

func printProfile(cmd *cobra.Command, p *model.Profile) {
	out := cmd.OutOrStdout()
	orDash := func(v *string) string {
		if v == nil {
			return "-"
		}
		return *v
	}
	age := "-"
	if p.DiagnosisAge != nil {
		age = strconv.Itoa(*p.DiagnosisAge)
	}
	_, _ = fmt.Fprintf(out, "user:           %s\n", p.ID)
	_, _ = fmt.Fprintf(out, "name:           %s\n", orDash(p.FullName))
	_, _ = fmt.Fprintf(out, "diagnosis age:  %s\n", age)
	_, _ = fmt.Fprintf(out, "diagnosis type: %s\n", orDash(p.DiagnosisType))
	_, _ = fmt.Fprintf(out, "updated:        %s\n", p.UpdatedAt.Local().Format(timeLayout))
}
