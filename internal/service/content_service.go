package service

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"growtrack/internal/models"
	"growtrack/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50

	defaultRecommended = 6
)

// ContentService serves the content library
type ContentService struct {
	contentRepo *repository.ContentRepository
	children    *ChildService
	clock       Clock
}

// NewContentService creates a new content service
func NewContentService(contentRepo *repository.ContentRepository, children *ChildService, clock Clock) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		children:    children,
		clock:       clock,
	}
}

// normalizePage clamps page and limit to usable values
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// List returns one page of library items. userID marks liked items and may be 0.
func (s *ContentService) List(filter models.ContentFilter, userID int64) ([]models.Content, models.Pagination, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.contentRepo.ListContent(filter, userID)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return items, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Recommended returns items suited to the current age of one of the user's children
func (s *ContentService) Recommended(userID, childID int64, limit int) ([]models.Content, error) {
	age, err := s.children.Age(userID, childID, time.Time{})
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultRecommended
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return s.contentRepo.GetRecommended(age.AgeInMonths, limit, userID)
}

// Get returns a library item and counts the view
func (s *ContentService) Get(id, userID int64) (*models.Content, error) {
	item, err := s.contentRepo.GetContentByID(id, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrContentNotFound
	}

	if err := s.contentRepo.IncrementViews(id); err != nil {
		log.Printf("Failed to count view of content %d: %v", id, err)
	} else {
		item.Views++
	}
	return item, nil
}

// ToggleLike likes or unlikes an item and returns the new state and like count
func (s *ContentService) ToggleLike(id, userID int64) (bool, int, error) {
	item, err := s.contentRepo.GetContentByID(id, userID)
	if err != nil {
		return false, 0, err
	}
	if item == nil {
		return false, 0, ErrContentNotFound
	}
	return s.contentRepo.ToggleLike(id, userID)
}

// Slugify turns a title into a lowercase, hyphen-separated identifier
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(foldAccents(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

var accentFolds = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "ê", "e", "è", "e",
	"í", "i", "î", "i",
	"ó", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
	"Á", "A", "Â", "A", "Ã", "A", "É", "E", "Ê", "E", "Í", "I", "Ó", "O", "Ô", "O", "Õ", "O", "Ú", "U", "Ç", "C",
)

func foldAccents(s string) string {
	return accentFolds.Replace(s)
}

// defaultContent is the starter library loaded into an empty database
var defaultContent = []models.Content{
	{
		Title:    "Sono seguro para recém-nascidos",
		Summary:  "Como preparar o berço e a rotina de sono nos primeiros meses.",
		Body:     "Coloque o bebê para dormir de barriga para cima, em colchão firme e sem travesseiros ou brinquedos. Mantenha o quarto arejado e evite superaquecimento.",
		Category: "saude",
		AgeRange: models.AgeRange{Min: 0, Max: 6},
		Tags:     []string{"sono", "recem-nascido", "seguranca"},
	},
	{
		Title:    "Introdução alimentar aos seis meses",
		Summary:  "Primeiros alimentos, texturas e sinais de prontidão.",
		Body:     "A partir dos seis meses o bebê pode começar a experimentar papinhas e alimentos amassados. Ofereça um alimento novo por vez e observe reações.",
		Category: "alimentacao",
		AgeRange: models.AgeRange{Min: 5, Max: 12},
		Tags:     []string{"alimentacao", "papinha"},
	},
	{
		Title:    "Brincadeiras que estimulam o engatinhar",
		Summary:  "Atividades simples para fortalecer braços, pernas e coordenação.",
		Body:     "Deixe o bebê passar tempo de bruços no chão, coloque brinquedos um pouco fora do alcance e incentive a exploração em um ambiente seguro.",
		Category: "desenvolvimento",
		AgeRange: models.AgeRange{Min: 6, Max: 12},
		Tags:     []string{"motor", "brincadeiras"},
	},
	{
		Title:    "Primeiras palavras",
		Summary:  "Como conversar com o bebê e estimular a fala.",
		Body:     "Narre o dia a dia, leia em voz alta e responda aos balbucios. A repetição de palavras simples ajuda a criança a associar sons e significados.",
		Category: "desenvolvimento",
		AgeRange: models.AgeRange{Min: 9, Max: 24},
		Tags:     []string{"linguagem", "fala"},
	},
	{
		Title:    "Calendário de vacinação infantil",
		Summary:  "As vacinas dos dois primeiros anos e como se organizar.",
		Body:     "Leve a caderneta de vacinação a cada consulta e registre as datas das doses no calendário da família para não perder nenhum reforço.",
		Category: "saude",
		AgeRange: models.AgeRange{Min: 0, Max: 24},
		Tags:     []string{"vacinas", "consultas"},
	},
	{
		Title:    "Livros para a primeira infância",
		Summary:  "Leitura compartilhada desde cedo.",
		Body:     "Livros de pano e de figuras grandes são ótimos para os menores. Aos poucos, escolha histórias curtas com rimas e repetições.",
		Category: "educacao",
		AgeRange: models.AgeRange{Min: 6, Max: 60},
		Tags:     []string{"leitura", "livros"},
	},
	{
		Title:    "Lidando com birras",
		Summary:  "Estratégias calmas para momentos de frustração.",
		Body:     "Mantenha a calma, nomeie o sentimento da criança e ofereça escolhas simples. Rotinas previsíveis reduzem a frequência das birras.",
		Category: "educacao",
		AgeRange: models.AgeRange{Min: 18, Max: 48},
		Tags:     []string{"comportamento", "emocoes"},
	},
	{
		Title:    "Lanches saudáveis para crianças pequenas",
		Summary:  "Ideias práticas de lanches nutritivos.",
		Body:     "Frutas em pedaços, iogurte natural, legumes cozidos e pães integrais são boas opções. Evite açúcar e ultraprocessados nos primeiros anos.",
		Category: "alimentacao",
		AgeRange: models.AgeRange{Min: 12, Max: 72},
		Tags:     []string{"lanches", "nutricao"},
	},
}

// SeedDefaultContent loads the starter library when the content table is empty
func (s *ContentService) SeedDefaultContent() (int, error) {
	count, err := s.contentRepo.CountContent()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := s.clock.Now().UTC()
	for i, item := range defaultContent {
		c := item
		c.Slug = Slugify(c.Title)
		// Stagger publish times so listings have a stable newest-first order
		c.PublishedAt = now.Add(-time.Duration(i) * time.Hour)
		if err := s.contentRepo.CreateContent(&c); err != nil {
			return i, fmt.Errorf("failed to seed content %q: %w", c.Slug, err)
		}
	}
	log.Printf("Seeded %d content items", len(defaultContent))
	return len(defaultContent), nil
}
