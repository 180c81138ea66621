package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sethvargo/go-password/password"

	"daybook/internal/database"
	"daybook/models"
	diarysvc "daybook/services/diary"
	summarysvc "daybook/services/summary"
	userssvc "daybook/services/users"
)

// seedEntry is one canned diary entry per wellbeing level. The polarities
// sit safely inside each level's band so recomputing sentiment from the
// text would land on the same level.
type seedEntry struct {
	level    models.WellbeingLevel
	text     string
	polarity float64
}

var seedEntries = []seedEntry{
	{models.LevelVerySad, "I feel miserable and hopeless.", -0.8},
	{models.LevelSad, "I am tired and lonely.", -0.4},
	{models.LevelNormal, "It was an okay day.", 0.0},
	{models.LevelHappy, "I feel happy and grateful.", 0.5},
	{models.LevelVeryHappy, "Today was amazing and wonderful!", 0.9},
}

func main() {
	dbPath := flag.String("db", "daybook.db", "path to the database file")
	username := flag.String("user", "demo", "username for the seeded account")
	days := flag.Int("days", 60, "number of days of entries to create, ending today")
	flag.Parse()

	if *days < 1 {
		fmt.Fprintln(os.Stderr, "days must be at least 1")
		os.Exit(1)
	}

	db, err := database.NewDB(database.Config{DatabasePath: *dbPath})
	if err != nil {
		log.Fatalf("[seed] database: %v", err)
	}
	defer db.Close()

	conn := db.Connection()
	users := userssvc.NewService(conn)
	diary := diarysvc.NewService(conn)
	summaries := summarysvc.NewService(conn, diary)

	pass, err := password.Generate(16, 4, 0, false, false)
	if err != nil {
		log.Fatalf("[seed] generate password: %v", err)
	}

	ctx := context.Background()
	userID, err := users.Register(ctx, *username, pass)
	if err != nil {
		log.Fatalf("[seed] create user: %v", err)
	}

	end := time.Now()
	for i := *days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		entry := seedEntries[(*days-1-i)%len(seedEntries)]

		ts := time.Date(day.Year(), day.Month(), day.Day(), 20, 0, 0, 0, day.Location())
		if _, err := diary.AddEntryWithSentiment(ctx, userID, entry.text, ts, entry.level, entry.polarity); err != nil {
			log.Fatalf("[seed] add entry for %s: %v", ts.Format(models.DateLayout), err)
		}
	}

	if err := summaries.GenerateAll(ctx, userID); err != nil {
		log.Fatalf("[seed] generate summaries: %v", err)
	}

	fmt.Printf("seeded %d days of entries\n", *days)
	fmt.Printf("username: %s\n", *username)
	fmt.Printf("password: %s\n", pass)
}
