package dataset

import "github.com/verte-zerg/flashdrill/internal/model"

var builtinItems = []model.Item{
	{Category: "animals", Prompt: "el gato", Answer: "the cat", Distractors: []string{"the dog", "the house", "the bird"}},
	{Category: "animals", Prompt: "el perro", Answer: "the dog", Distractors: []string{"the cat", "the fish", "the horse"}},
	{Category: "animals", Prompt: "el pájaro", Answer: "the bird", Distractors: []string{"the fish", "the cow", "the pig"}},
	{Category: "animals", Prompt: "el pez", Answer: "the fish", Distractors: []string{"the bird", "the cat", "the dog"}},
	{Category: "animals", Prompt: "el caballo", Answer: "the horse", Distractors: []string{"the cow", "the pig", "the sheep"}},

	{Category: "food", Prompt: "la manzana", Answer: "the apple", Distractors: []string{"the orange", "the banana", "the grape"}},
	{Category: "food", Prompt: "el pan", Answer: "the bread", Distractors: []string{"the rice", "the pasta", "the cake"}},
	{Category: "food", Prompt: "la leche", Answer: "the milk", Distractors: []string{"the water", "the juice", "the coffee"}},
	{Category: "food", Prompt: "el arroz", Answer: "the rice", Distractors: []string{"the bread", "the pasta", "the potato"}},
	{Category: "food", Prompt: "la carne", Answer: "the meat", Distractors: []string{"the fish", "the chicken", "the beef"}},

	{Category: "verbs", Prompt: "comer", Answer: "to eat", Distractors: []string{"to drink", "to sleep", "to run"}},
	{Category: "verbs", Prompt: "beber", Answer: "to drink", Distractors: []string{"to eat", "to sleep", "to walk"}},
	{Category: "verbs", Prompt: "dormir", Answer: "to sleep", Distractors: []string{"to eat", "to run", "to walk"}},
	{Category: "verbs", Prompt: "caminar", Answer: "to walk", Distractors: []string{"to run", "to jump", "to dance"}},
	{Category: "verbs", Prompt: "correr", Answer: "to run", Distractors: []string{"to walk", "to jump", "to dance"}},
}

// Builtin returns the bundled Spanish to English table.
func Builtin() *Dataset {
	d, err := New(builtinItems)
	if err != nil {
		panic("builtin dataset is invalid: " + err.Error())
	}
	return d
}
