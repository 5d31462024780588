package database

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// SeedBlockedWords downloads the moderation word list from url and stores it
// when the blocked_words table is still empty. An empty url disables seeding.
func (db *DB) SeedBlockedWords(url string) error {
	if url == "" {
		return nil
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM blocked_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check blocked words count: %w", err)
	}
	if count > 0 {
		log.Printf("Moderation filter already populated with %d words", count)
		return nil
	}

	log.Println("Downloading moderation word list...")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download word list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from word list URL: %d", resp.StatusCode)
	}

	added, err := db.ImportBlockedWords(resp.Body)
	if err != nil {
		return err
	}

	log.Printf("Moderation filter populated with %d words", added)
	return nil
}

// ImportBlockedWords stores one word per line from r, skipping duplicates
func (db *DB) ImportBlockedWords(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	added := 0

	err := db.WithTx(func(tx *Tx) error {
		stmt, err := tx.Prepare(db.Dialect.RewriteQuery(db.Dialect.InsertIgnoreQuery("blocked_words", "word")))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for scanner.Scan() {
			word := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if word == "" {
				continue
			}
			result, err := stmt.Exec(word)
			if err != nil {
				return fmt.Errorf("failed to insert blocked word: %w", err)
			}
			if n, err := result.RowsAffected(); err == nil && n > 0 {
				added++
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading word list: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// FindBlockedWords returns the distinct words of text found in the blocked list
func (db *DB) FindBlockedWords(text string) ([]string, error) {
	words := tokenize(text)
	if len(words) == 0 {
		return nil, nil
	}

	args := make([]interface{}, len(words))
	for i, w := range words {
		args[i] = w
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(words)), ", ")
	query := "SELECT word FROM blocked_words WHERE word IN (" + placeholders + ") ORDER BY word"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocked words: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("failed to scan blocked word: %w", err)
		}
		found = append(found, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blocked words: %w", err)
	}

	if len(found) > 0 {
		log.Printf("Blocked words detected: %v", found)
	}
	return found, nil
}

// tokenize lowercases text and returns its distinct words
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	var words []string
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			words = append(words, f)
		}
	}
	return words
}
