package bench

import "github.com/orsinium-labs/enum"

// Scale selects how much work every benchmark does.
type Scale enum.Member[string]

var (
	ScaleSmall   = Scale{Value: "small"}
	ScaleDefault = Scale{Value: "default"}
	ScaleLarge   = Scale{Value: "large"}

	Scales = enum.New(ScaleSmall, ScaleDefault, ScaleLarge)
)

func scaleNames() []string {
	names := make([]string, 0, len(Scales.Members()))
	for _, s := range Scales.Members() {
		names = append(names, s.Value)
	}
	return names
}

// workload holds the sizes of every benchmark.
type workload struct {
	goroutines int

	simpleUsers int

	complexUsers              int
	complexArticlesPerUser    int
	complexCommentsPerArticle int

	manyUsers   int
	manyQueries int

	largeUsers int
	largeBytes int
}

func workloadFor(scale Scale, goroutines int) workload {
	w := workload{
		goroutines: goroutines,

		simpleUsers: 100_000,

		complexUsers:              100,
		complexArticlesPerUser:    50,
		complexCommentsPerArticle: 10,

		manyUsers:   1_000,
		manyQueries: 1_000,

		largeUsers: 10_000,
		largeBytes: 10_000,
	}

	switch scale {
	case ScaleSmall:
		w.simpleUsers = 10_000
		w.complexUsers = 20
		w.complexArticlesPerUser = 10
		w.complexCommentsPerArticle = 5
		w.manyUsers = 100
		w.manyQueries = 100
		w.largeUsers = 1_000
	case ScaleLarge:
		w.simpleUsers = 1_000_000
		w.complexUsers = 200
		w.complexArticlesPerUser = 100
		w.complexCommentsPerArticle = 20
		w.manyQueries = 5_000
		w.largeBytes = 100_000
	}

	return w
}
