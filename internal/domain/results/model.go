package results

// Предопределённые виды расчётов (засеваются миграцией).
var PredefinedTypes = []CalculationType{
	{Name: "Normal Stress", Unit: "Pa"},
	{Name: "Directional Deformation", Unit: "m"},
	{Name: "Shear Stress", Unit: "Pa"},
	{Name: "Total Deformation", Unit: "m"},
}

type Model struct {
	Name string
}

type CalculationType struct {
	Name string
	Unit string
}

// Result: значение в узле. Номер узла хранится строкой как есть.
type Result struct {
	Model           string
	Node            string
	CalculationType string
	Value           float64
}

// Filter: пустые поля не ограничивают выборку.
type Filter struct {
	Model           string
	CalculationType string
}
