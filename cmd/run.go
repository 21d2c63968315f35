/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/gomcl/InputParameters"
	"github.com/notargets/gomcl/MCL"
	"github.com/notargets/gomcl/model_problems/EulerMCL"
)

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "One dimensional Euler model problems with monolithic convex limiting",
	Long: `
Runs the limited continuous Galerkin solver on a one dimensional Euler
model problem. Parameters come from an optional YAML input file,
overridden by command line flags.

gomcl run -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err    error
			icFile string
			ip     = &InputParameters.MCLParameters{}
		)
		icFile, _ = cmd.Flags().GetString("inputConditionsFile")
		if len(icFile) != 0 {
			var data []byte
			if data, err = ioutil.ReadFile(icFile); err != nil {
				fmt.Printf("unable to read input conditions file [%s]: %s\n", icFile, err.Error())
				os.Exit(1)
			}
			if err = ip.Parse(data); err != nil {
				fmt.Printf("error parsing input conditions file [%s]: %s\n", icFile, err.Error())
				os.Exit(1)
			}
		} else {
			_ = ip.Validate()
		}
		if cmd.Flags().Changed("CFL") {
			ip.CFL, _ = cmd.Flags().GetFloat64("CFL")
		}
		if cmd.Flags().Changed("finalTime") {
			ip.FinalTime, _ = cmd.Flags().GetFloat64("finalTime")
		}
		if cmd.Flags().Changed("k") {
			ip.K, _ = cmd.Flags().GetInt("k")
		}
		if cmd.Flags().Changed("case") {
			ip.Case, _ = cmd.Flags().GetString("case")
		}
		if cmd.Flags().Changed("policy") {
			ip.LowOrderPolicy, _ = cmd.Flags().GetString("policy")
		}
		if cmd.Flags().Changed("parallelDegree") {
			ip.ParallelDegree, _ = cmd.Flags().GetInt("parallelDegree")
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start().Stop()
		}
		ip.Print()
		if err = RunModel(ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML input parameters file")
	RunCmd.Flags().IntP("k", "k", 100, "Number of elements in model")
	RunCmd.Flags().StringP("case", "c", "SOD", "Case to run: SOD, DensityWave or Freestream")
	RunCmd.Flags().String("policy", "LumpedNbrs", "Low order mass policy: Lumped or LumpedNbrs")
	RunCmd.Flags().IntP("parallelDegree", "p", 0, "Parallel degree, 0 = all cores")
	RunCmd.Flags().Float64("CFL", 0.5, "CFL - increase for speedup, decrease for stability")
	RunCmd.Flags().Float64("finalTime", 0.2, "FinalTime - the target end time for the sim")
	RunCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}

func caseFromName(name string) (caseType EulerMCL.CaseType, err error) {
	switch name {
	case "SOD", "sod":
		caseType = EulerMCL.SOD
	case "DensityWave", "densitywave":
		caseType = EulerMCL.DensityWave
	case "Freestream", "FreeStream", "freestream":
		caseType = EulerMCL.FreeStream
	default:
		err = fmt.Errorf("unknown case [%s], must be SOD, DensityWave or Freestream", name)
	}
	return
}

func policyFromName(name string) (policy MCL.LowOrderPolicy, err error) {
	switch name {
	case "Lumped", "lumped":
		policy = MCL.LumpedDiagonal{}
	case "LumpedNbrs", "lumpednbrs":
		policy = MCL.LumpedWithDiagonalNbrs{}
	default:
		err = fmt.Errorf("unknown low order policy [%s], must be Lumped or LumpedNbrs", name)
	}
	return
}

func RunModel(ip *InputParameters.MCLParameters) (err error) {
	var (
		caseType EulerMCL.CaseType
		policy   MCL.LowOrderPolicy
		c        *EulerMCL.Simulation
	)
	if caseType, err = caseFromName(ip.Case); err != nil {
		return
	}
	if policy, err = policyFromName(ip.LowOrderPolicy); err != nil {
		return
	}
	if c, err = EulerMCL.NewSimulation(ip.CFL, ip.FinalTime, ip.Gamma, ip.K, caseType, policy, ip.ParallelDegree); err != nil {
		return
	}
	c.Ev.LowOrderCFL = ip.LowOrderCFL
	// Optional far field override from the BC section of the input file
	if ff, found := ip.BCs["FarField"]; found {
		for _, params := range ff {
			q := c.Eq.ConservedFromPrimitive(params["Rho"], []float64{params["U"]}, params["P"])
			c.Eq.SetFarField(q)
		}
	}
	return c.Run()
}
