// Package e2e provides end-to-end tests with a generated catalog and many queries.
package e2e

import (
	"fmt"
	"sort"

	"github.com/hyperjump/treerec/internal/models"
)

// QueryTestCase is a search query and the exact set of item IDs it must return.
type QueryTestCase struct {
	Query       string
	ExpectedIDs []string
}

// Corpus holds catalog items and query test cases.
type Corpus struct {
	Items     []*models.Item
	TestCases []QueryTestCase
}

type family struct {
	name     string
	brand    string
	path     []string
	keywords []string
}

var families = []family{
	{"Chuteira Society", "Umbro", []string{"Esportes", "Futebol", "Calçados"}, []string{"chuteira", "futebol", "society"}},
	{"Bicicleta Aro 29", "Caloi", []string{"Esportes", "Ciclismo", "Bicicletas"}, []string{"bicicleta", "ciclismo", "trilha"}},
	{"Barraca Iglu", "Coleman", []string{"Lazer", "Camping", "Barracas"}, []string{"barraca", "camping", "trilha"}},
	{"Violão Folk", "Yamaha", []string{"Música", "Instrumentos", "Cordas"}, []string{"violão", "música", "cordas"}},
	{"Teclado Mecânico", "Logitech", []string{"Eletrônicos", "Periféricos", "Teclados"}, []string{"teclado", "gamer", "mecânico"}},
	{"Panela de Pressão", "Tramontina", []string{"Casa", "Cozinha", "Panelas"}, []string{"panela", "cozinha", "pressão"}},
	{"Livro de Receitas", "Companhia", []string{"Livros", "Culinária"}, []string{"livro", "receitas", "cozinha"}},
	{"Console Portátil", "Nintendo", []string{"Eletrônicos", "Games", "Consoles"}, []string{"console", "gamer", "portátil"}},
	{"Mochila Cargueira", "Deuter", []string{"Lazer", "Camping", "Mochilas"}, []string{"mochila", "camping", "viagem"}},
	{"Caixa de Som", "JBL", []string{"Eletrônicos", "Áudio", "Caixas"}, []string{"caixa", "música", "bluetooth"}},
}

// BuildCorpus returns a catalog of n items cycling through the product families, plus one
// query per distinct keyword expecting every item that carries it.
func BuildCorpus(n int) *Corpus {
	c := &Corpus{Items: make([]*models.Item, 0, n)}
	byKeyword := make(map[string][]string)
	for i := 0; i < n; i++ {
		f := families[i%len(families)]
		item := &models.Item{
			ID:           fmt.Sprintf("e2e-%03d", i+1),
			Name:         fmt.Sprintf("%s %d", f.name, i/len(families)+1),
			Brand:        f.brand,
			CategoryPath: append([]string(nil), f.path...),
			Description:  fmt.Sprintf("%s da marca %s.", f.name, f.brand),
			Keywords:     append([]string(nil), f.keywords...),
			Price:        float64(100 + i*10),
		}
		c.Items = append(c.Items, item)
		for _, kw := range f.keywords {
			byKeyword[kw] = append(byKeyword[kw], item.ID)
		}
	}
	keywords := make([]string, 0, len(byKeyword))
	for kw := range byKeyword {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	for _, kw := range keywords {
		c.TestCases = append(c.TestCases, QueryTestCase{Query: kw, ExpectedIDs: byKeyword[kw]})
	}
	return c
}
