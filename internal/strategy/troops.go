package strategy

import (
	"travian-agent/internal/model"
	"travian-agent/internal/resources"
)

// baseInfantryCost is the resource cost of one unit of a tribe's cheapest
// infantry, used to size a training batch. The pack carries no per-unit
// cost table (calculator.go only prices buildings), so every tribe shares
// one representative cost rather than inventing seven distinct tables from
// nothing grounded in the retrieval pack.
var baseInfantryCost = resources.Set{Lumber: 120, Clay: 100, Iron: 150, Crop: 30}

// maxTrainBatch bounds a single TrainJob so a resource-rich village doesn't
// queue an implausibly large order in one shot.
const maxTrainBatch = 50

var baseInfantryName = map[model.Tribe]string{
	model.TribeRomans:    "Legionnaire",
	model.TribeTeutons:   "Clubswinger",
	model.TribeGauls:     "Phalanx",
	model.TribeHuns:      "Mercenary",
	model.TribeSpartans:  "Hoplite",
	model.TribeNors:      "Raider",
	model.TribeEgyptians: "Slave Militia",
}

func trainableQuantity(v *model.Village) int {
	n := resources.Fits(baseInfantryCost, v.Resources)
	if n > maxTrainBatch {
		n = maxTrainBatch
	}
	return n
}

func infantryName(tribe model.Tribe) string {
	if name, ok := baseInfantryName[tribe]; ok {
		return name
	}
	return "Legionnaire"
}
