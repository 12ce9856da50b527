package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/meal_annotator/pkg/config"
	"github.com/iWorld-y/meal_annotator/pkg/model"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS meal_analysis (
	id SERIAL PRIMARY KEY,
	meal_description TEXT NOT NULL,
	country TEXT NOT NULL,
	is_healthy BOOLEAN NOT NULL,
	record JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertRecordSQL = `INSERT INTO meal_analysis (meal_description, country, is_healthy, record) VALUES ($1, $2, $3, $4)`

// Storage PostgreSQL 归档
type Storage struct {
	db *sql.DB
}

func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	s, err := newWithDB(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func newWithDB(ctx context.Context, db *sql.DB) (*Storage, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Ensure Storage implements Sink
var _ Sink = (*Storage)(nil)

func (s *Storage) Close() error {
	return s.db.Close()
}

// Save 写入一条分析记录，完整记录存为 JSONB
func (s *Storage) Save(ctx context.Context, record model.AnalysisRecord) error {
	record = sanitizeRecord(record)

	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, insertRecordSQL,
		record.MealDescription, record.Country, record.IsHealthy, string(doc)); err != nil {
		return fmt.Errorf("insert meal_analysis failed: %w", err)
	}
	return nil
}

// sanitizeRecord 清理 PostgreSQL 文本和 JSONB 均不接受的字符
func sanitizeRecord(r model.AnalysisRecord) model.AnalysisRecord {
	r.MealDescription = cleanText(r.MealDescription)
	r.Country = cleanText(r.Country)
	r.NutrientSummary = cleanText(r.NutrientSummary)
	r.Evaluation = cleanText(r.Evaluation)

	foods := make([]model.FoodAnalysis, len(r.Foods))
	for i, f := range r.Foods {
		f.Food = cleanText(f.Food)
		f.ServingSize = cleanText(f.ServingSize)
		foods[i] = f
	}
	r.Foods = foods

	if r.Macronutrients != nil {
		macros := make(map[string]string, len(r.Macronutrients))
		for k, v := range r.Macronutrients {
			macros[k] = cleanText(v)
		}
		r.Macronutrients = macros
	}
	return r
}

func cleanText(s string) string {
	// 移除无效的 UTF-8 字符
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r == utf8.RuneError {
				continue
			}
			v = append(v, r)
		}
		s = string(v)
	}
	return removeNullBytes(s)
}

func removeNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
