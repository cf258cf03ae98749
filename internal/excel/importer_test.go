package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/helloimabid/compstudy/internal/database"
)

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"", -1},
		{"1", -1},
	}
	for _, tt := range tests {
		if got := columnIndex(tt.in); got != tt.want {
			t.Errorf("columnIndex(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestImportTopicsFromCSV(t *testing.T) {
	if err := database.Connect("sqlite3", ":memory:"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
		database.DB = nil
	})

	csvPath := filepath.Join(t.TempDir(), "curriculum.csv")
	content := "Subject,Topic,Description\n" +
		"Physics,Rotational dynamics,Torque and angular momentum\n" +
		"Physics,Rotational dynamics,Duplicate of the row above\n" +
		"Chemistry,Organic reactions,\n" +
		",Missing subject,should be skipped\n"
	if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config := DefaultImportConfig()
	config.FilePath = csvPath
	config.AddForUserID = "user-1"

	result, err := ImportTopics(context.Background(), config)
	if err != nil {
		t.Fatalf("ImportTopics: %v", err)
	}

	if result.TotalProcessed != 4 {
		t.Errorf("processed = %d, want 4", result.TotalProcessed)
	}
	if result.TopicsCreated != 2 {
		t.Errorf("topics created = %d, want 2", result.TopicsCreated)
	}
	if result.ItemsCreated != 2 {
		t.Errorf("items created = %d, want 2", result.ItemsCreated)
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors = %v, want one for the malformed row", result.Errors)
	}

	// The duplicate row reused the existing topic instead of creating one
	topics, err := database.NewTopicRepository().List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 2 {
		t.Errorf("topics in store = %d, want 2", len(topics))
	}

	items, err := database.NewItemRepository().ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("review items = %d, want 2", len(items))
	}
}
