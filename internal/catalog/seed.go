package catalog

import "bookwidget/internal/book"

// Seed returns the fixed set every new session catalog starts from.
func Seed() []book.Book {
	return []book.Book{
		{
			ID:          "seed-1",
			Title:       "The Hobbit",
			Author:      "J.R.R. Tolkien",
			Genre:       "Fantasy",
			Features:    []string{"magic", "quest", "dragons", "adventure"},
			Description: "Bilbo Baggins is swept into a quest to reclaim a dwarven kingdom from a dragon.",
		},
		{
			ID:          "seed-2",
			Title:       "A Wizard of Earthsea",
			Author:      "Ursula K. Le Guin",
			Genre:       "Fantasy",
			Features:    []string{"magic", "coming-of-age", "islands"},
			Description: "A young mage unleashes a shadow upon the world and must hunt it down.",
		},
		{
			ID:          "seed-3",
			Title:       "Mistborn: The Final Empire",
			Author:      "Brandon Sanderson",
			Genre:       "Fantasy",
			Features:    []string{"magic", "heist", "rebellion"},
			Description: "A street thief joins a crew planning to overthrow an immortal emperor.",
		},
		{
			ID:          "seed-4",
			Title:       "Dune",
			Author:      "Frank Herbert",
			Genre:       "Science Fiction",
			Features:    []string{"space", "politics", "desert", "prophecy"},
			Description: "The heir of House Atreides is thrown into the struggle for the desert planet Arrakis.",
		},
		{
			ID:          "seed-5",
			Title:       "Nineteen Eighty-Four",
			Author:      "George Orwell",
			Genre:       "Science Fiction",
			Features:    []string{"dystopian", "politics", "surveillance"},
			Description: "Winston Smith rebels against the all-seeing Party.",
		},
		{
			ID:          "seed-6",
			Title:       "The Left Hand of Darkness",
			Author:      "Ursula K. Le Guin",
			Genre:       "Science Fiction",
			Features:    []string{"space", "gender", "diplomacy"},
			Description: "An envoy visits a world whose people have no fixed sex.",
		},
		{
			ID:          "seed-7",
			Title:       "The Hound of the Baskervilles",
			Author:      "Arthur Conan Doyle",
			Genre:       "Mystery",
			Features:    []string{"detective", "gothic", "investigation"},
			Description: "Sherlock Holmes investigates a legendary hound on Dartmoor.",
		},
		{
			ID:          "seed-8",
			Title:       "And Then There Were None",
			Author:      "Agatha Christie",
			Genre:       "Mystery",
			Features:    []string{"whodunit", "island", "investigation"},
			Description: "Ten strangers are lured to an island and die one by one.",
		},
		{
			ID:          "seed-9",
			Title:       "Pride and Prejudice",
			Author:      "Jane Austen",
			Genre:       "Romance",
			Features:    []string{"classic", "society", "wit"},
			Description: "Elizabeth Bennet spars with the proud Mr. Darcy.",
		},
		{
			ID:          "seed-10",
			Title:       "Sapiens",
			Author:      "Yuval Noah Harari",
			Genre:       "Non-fiction",
			Features:    []string{"history", "anthropology", "society"},
			Description: "A brief history of humankind.",
		},
	}
}
