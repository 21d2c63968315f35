package cmd

import (
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/notargets/gomcl/InputParameters"
	"github.com/notargets/gomcl/model_problems/EulerMCL"
)

func TestRunInput(t *testing.T) {
	var (
		err error
	)
	fileInput := []byte(`
Title: Test Case
CFL: 0.75
Case: DensityWave # Can be SOD, DensityWave or Freestream
LowOrderPolicy: Lumped
K: 250
FinalTime: 0.4
BCs:
  FarField:
      1:
         Rho: 1.0
         U: 1.0
         P: 1.0
`)
	var input InputParameters.MCLParameters
	if err = input.Parse(fileInput); err != nil {
		panic(err)
	}
	assert.Equal(t, input.CFL, 0.75)
	assert.Equal(t, input.K, 250)
	assert.Equal(t, input.Case, "DensityWave")
	assert.Equal(t, input.FinalTime, 0.4)
	// Check FarField BC group 1
	assert.Equal(t, input.BCs["FarField"][1]["Rho"], 1.)
	assert.Equal(t, input.BCs["FarField"][1]["U"], 1.)
	input.Print()
	// Defaults fill in what the file leaves out
	assert.Equal(t, input.Gamma, 1.4)
	assert.Equal(t, input.LowOrderCFL, 1.)

	caseType, err := caseFromName(input.Case)
	assert.Equal(t, err, nil)
	assert.Equal(t, caseType, EulerMCL.DensityWave)
	_, err = policyFromName(input.LowOrderPolicy)
	assert.Equal(t, err, nil)
	_, err = caseFromName("bogus")
	assert.Equal(t, err != nil, true)
	_, err = policyFromName("bogus")
	assert.Equal(t, err != nil, true)
}

func TestBareRunDefaults(t *testing.T) {
	// With no input file and no flags the defaults alone must produce a
	// runnable configuration, in particular a nonzero end time
	var input InputParameters.MCLParameters
	assert.Equal(t, input.Validate(), nil)
	assert.Equal(t, input.FinalTime, 0.2)
	assert.Equal(t, input.CFL, 0.5)
	assert.Equal(t, input.K, 100)
	assert.Equal(t, input.Case, "SOD")
	assert.Equal(t, input.LowOrderPolicy, "LumpedNbrs")
}

func TestCFLValidation(t *testing.T) {
	var input InputParameters.MCLParameters
	err := input.Parse([]byte(`CFL: 2.0`))
	assert.Equal(t, err != nil, true)
}
