package game

import (
	"fmt"
	"math/rand"
)

// Question is a generated arithmetic question with three candidate answers.
// CorrectIndex is 1-based, matching the button numbering on clients.
type Question struct {
	Text         string
	Answers      [3]int
	CorrectIndex int
}

// CorrectValue returns the mathematically correct answer.
func (q Question) CorrectValue() int {
	return q.Answers[q.CorrectIndex-1]
}

// Generator produces randomized arithmetic questions. It carries its own
// rand source so tests can seed it.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

var operators = []string{"+", "-", "×"}

// Generate draws two operands in [1,20] and an operator, computes the true
// result, synthesizes two distinct decoys within ±5 of it, and shuffles the
// three values into a random presentation order.
func (g *Generator) Generate() Question {
	a := g.rng.Intn(20) + 1
	b := g.rng.Intn(20) + 1
	op := operators[g.rng.Intn(len(operators))]

	var correct int
	switch op {
	case "+":
		correct = a + b
	case "-":
		correct = a - b
	case "×":
		correct = a * b
	}

	decoys := map[int]bool{}
	for len(decoys) < 2 {
		offset := g.rng.Intn(11) - 5 // -5..+5
		wrong := correct + offset
		if wrong != correct && !decoys[wrong] {
			decoys[wrong] = true
		}
	}

	answers := [3]int{correct}
	i := 1
	for d := range decoys {
		answers[i] = d
		i++
	}
	g.rng.Shuffle(3, func(x, y int) {
		answers[x], answers[y] = answers[y], answers[x]
	})

	q := Question{
		Text:    fmt.Sprintf("%d %s %d", a, op, b),
		Answers: answers,
	}
	for pos, v := range answers {
		if v == correct {
			q.CorrectIndex = pos + 1
			break
		}
	}
	return q
}
