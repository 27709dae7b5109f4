// Command demo exercises the inference engines against the example
// networks in examples/ and prints their results.
package main

import (
	"fmt"
	"log"

	"github.com/inferlab/bayeslab"
	"github.com/inferlab/bayeslab/examples"
	"github.com/inferlab/bayeslab/factor"
	"github.com/inferlab/bayeslab/influence"
	"github.com/inferlab/bayeslab/junctiontree"
	"github.com/inferlab/bayeslab/temporal"
	"github.com/inferlab/bayeslab/ve"
)

func main() {
	fmt.Println("=== bayeslab: exact inference over discrete Bayesian networks ===")

	fmt.Println("\n-- Slippery road: marginals and evidence --")
	slipperyRoadExample()

	fmt.Println("\n-- Slippery road: bucket elimination vs junction tree --")
	bucketVsTreeExample()

	fmt.Println("\n-- Cloth/sold: soft posterior evidence --")
	softEvidenceExample()

	fmt.Println("\n-- PhD influence diagram --")
	phdExample()

	fmt.Println("\n-- Temporal chain unrolling --")
	temporalExample()
}

func slipperyRoadExample() {
	net, err := examples.SlipperyRoad()
	if err != nil {
		log.Fatal(err)
	}

	eng := ve.New(net)
	winter, err := eng.Query([]string{"winter"}, nil, ve.Bucket)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("P(winter) = %v\n", winter.Table)

	slippery, err := eng.Query([]string{"slippery_road"}, nil, ve.Bucket)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("P(slippery_road) = %v\n", slippery.Table)

	rainGivenDryGrass, err := eng.Query([]string{"rain"}, map[string]string{"wet_grass": "false"}, ve.Bucket)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("P(rain | wet_grass=false) = %v\n", rainGivenDryGrass.Table)
}

func bucketVsTreeExample() {
	net, err := examples.SlipperyRoad()
	if err != nil {
		log.Fatal(err)
	}

	bucketResult, err := ve.New(net).Query([]string{"wet_grass"}, map[string]string{"winter": "true"}, ve.Bucket)
	if err != nil {
		log.Fatal(err)
	}

	tree, err := junctiontree.Build(net)
	if err != nil {
		log.Fatal(err)
	}
	if err := tree.SetHardEvidence(map[string]string{"winter": "true"}); err != nil {
		log.Fatal(err)
	}
	treeResult, err := tree.Marginals("wet_grass")
	if err != nil {
		log.Fatal(err)
	}
	treeResult.Normalize()

	fmt.Printf("bucket elimination: P(wet_grass | winter=true) = %v\n", bucketResult.Table)
	fmt.Printf("junction tree:      P(wet_grass | winter=true) = %v\n", treeResult.Table)
}

// softEvidenceExample reweights cloth's prior toward a desired marginal
// (rather than pinning it to a single label) and shows the effect both
// on cloth itself and, downstream, on sold.
func softEvidenceExample() {
	net, err := examples.ClothSold()
	if err != nil {
		log.Fatal(err)
	}

	clothNode := net.Node("cloth")
	desired := []float64{0.7, 0.25, 0.05}
	ratio, err := factor.PosteriorEvidence("cloth", clothNode.Values, clothNode.Table, desired)
	if err != nil {
		log.Fatal(err)
	}
	clothPrior := &factor.Factor{
		Vars:   []string{"cloth"},
		Values: map[string][]string{"cloth": clothNode.Values},
		Table:  clothNode.Table,
	}
	clothPosterior, err := ratio.Product(clothPrior)
	if err != nil {
		log.Fatal(err)
	}
	clothPosterior.Normalize()
	fmt.Printf("marginals([cloth]) after soft evidence = %v\n", clothPosterior.Table)

	tree, err := junctiontree.Build(net)
	if err != nil {
		log.Fatal(err)
	}
	if err := tree.SetEvidence(map[string]factor.Observation{"cloth": factor.SoftEvidence(desired)}, true); err != nil {
		log.Fatal(err)
	}
	sold, err := tree.Marginals("sold")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("marginals([sold]) after soft evidence = %v\n", sold.Table)
}

func phdExample() {
	net, err := examples.PhDDiagram()
	if err != nil {
		log.Fatal(err)
	}
	eng := influence.New(net)
	result, err := eng.Solve(nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("expected utility of optimal play = %.2f\n", result.ExpectedUtility)
	decision, err := result.BestDecision("education", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("optimal decision: education = %q\n", decision)

	startupNet, err := examples.PhDStartupDiagram()
	if err != nil {
		log.Fatal(err)
	}
	startupEng := influence.New(startupNet)
	startupResult, err := startupEng.Solve(nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("expected utility of optimal play (PhD+startup) = %.2f\n", startupResult.ExpectedUtility)
	educationDecision, err := startupResult.BestDecision("education", nil)
	if err != nil {
		log.Fatal(err)
	}
	startupDecision, err := startupResult.BestDecision("startup", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("optimal decision: education = %q, startup = %q\n", educationDecision, startupDecision)
}

func temporalExample() {
	prior, transition, err := examples.TemporalChain()
	if err != nil {
		log.Fatal(err)
	}

	unroller, err := temporal.NewUnroller([]string{"A", "B"}, prior, transition, bayeslab.PriorFeedback)
	if err != nil {
		log.Fatal(err)
	}
	marginals, err := unroller.Step(nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("after one empty unroll: P(A)=%v P(B)=%v\n", marginals["A"].Table, marginals["B"].Table)
}
