package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/reactorlab/internal/components"
	"github.com/san-kum/reactorlab/internal/plant"
)

func (a *app) buildCmd() *cobra.Command {
	var (
		seed       int64
		fissions   bool
		printSheet bool
	)
	cmd := &cobra.Command{
		Use:   "build [sheet.toml]",
		Short: "build plant components from a sheet",
		Long:  "Without a sheet, look up U-235, build one fuel rod from it and print it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if printSheet {
				data, err := plant.Marshal(plant.DefaultSheet())
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}

			cat, err := components.LoadCatalog()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				material, err := cat.Fissile("U-235")
				if err != nil {
					return err
				}
				rod, err := components.NewFuelRod(material, rand.New(rand.NewSource(seed)))
				if err != nil {
					return err
				}
				fmt.Println(rod)
				return nil
			}

			sheet, err := plant.Load(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				sheet.Seed = seed
			}
			asm, err := plant.Build(cat, sheet)
			if err != nil {
				return err
			}
			a.log.Infow("plant built", "sheet", args[0], "rods", len(asm.Rods), "neutrons", len(asm.Neutrons))

			if err := asm.Describe(os.Stdout); err != nil {
				return err
			}
			fmt.Println()
			fmt.Printf("%s %s: %d rods, mean enrichment %.4f\n",
				a.au.Bold("plant"), asm.Name, len(asm.Rods), asm.MeanEnrichment())
			if n := asm.Moderate(); n > 0 {
				fmt.Printf("moderator thermalized %d neutrons\n", n)
			}

			if fissions {
				rng := rand.New(rand.NewSource(sheet.Seed))
				total := 0
				for _, rod := range asm.Rods {
					total += rod.Material.InduceFission(rng)
				}
				fmt.Printf("one fission per rod released %v prompt neutrons\n", a.au.Bold(total))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&fissions, "fissions", false, "induce one fission in every rod")
	cmd.Flags().BoolVar(&printSheet, "print-sheet", false, "print the default sheet and exit")
	return cmd
}

func (a *app) materialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "list the component catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := components.LoadCatalog()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, a.au.Bold("KIND\tNAME\tDETAIL\tALIASES"))
			for _, m := range cat.FissileMaterials {
				fmt.Fprintf(w, "%s\t%s\t%g-%g\t%s\n", a.au.Red("fissile"), m.Name,
					m.Enrichment.Low, m.Enrichment.High, strings.Join(m.Aliases, ", "))
			}
			for _, m := range cat.NonFissileMaterials {
				fmt.Fprintf(w, "%s\t%s\t\t%s\n", a.au.Brown("non-fissile"), m.Name, strings.Join(m.Aliases, ", "))
			}
			for _, m := range cat.Moderators {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.au.Cyan("moderator"), m.Name, m.Formula, strings.Join(m.Aliases, ", "))
			}
			return w.Flush()
		},
	}
}
