package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type MCLParameters struct {
	Title          string  `yaml:"Title"`
	CFL            float64 `yaml:"CFL"`
	FinalTime      float64 `yaml:"FinalTime"`
	K              int     `yaml:"K"` // Number of elements
	Gamma          float64 `yaml:"Gamma"`
	Case           string  `yaml:"Case"`           // SOD, DensityWave or Freestream
	LowOrderPolicy string  `yaml:"LowOrderPolicy"` // Lumped or LumpedNbrs
	LowOrderCFL    float64 `yaml:"LowOrderCFL"`
	ParallelDegree int     `yaml:"ParallelDegree"`
	// First key is BC name/type, second is the face group, third is the
	// parameter name
	BCs map[string]map[int]map[string]float64 `yaml:"BCs"`
}

func (ip *MCLParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	return ip.Validate()
}

// Validate fills defaults and rejects out-of-range parameters.
func (ip *MCLParameters) Validate() error {
	if ip.CFL <= 0 {
		ip.CFL = 0.5
	}
	if ip.CFL > 1 {
		return fmt.Errorf("CFL %v exceeds the explicit stability range (0,1]", ip.CFL)
	}
	if ip.FinalTime <= 0 {
		ip.FinalTime = 0.2
	}
	if ip.Gamma == 0 {
		ip.Gamma = 1.4
	}
	if ip.K <= 0 {
		ip.K = 100
	}
	if ip.LowOrderCFL == 0 {
		ip.LowOrderCFL = 1
	}
	if ip.Case == "" {
		ip.Case = "SOD"
	}
	if ip.LowOrderPolicy == "" {
		ip.LowOrderPolicy = "LumpedNbrs"
	}
	return nil
}

func (ip *MCLParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("%8.5f\t\t= Gamma\n", ip.Gamma)
	fmt.Printf("[%d]\t\t\t= Num Elements K\n", ip.K)
	fmt.Printf("[%s]\t\t\t= Case\n", ip.Case)
	fmt.Printf("[%s]\t\t= Low Order Policy\n", ip.LowOrderPolicy)
	keys := make([]string, len(ip.BCs))
	i := 0
	for k := range ip.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}
