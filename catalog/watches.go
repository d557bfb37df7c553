// Package catalog holds the storefront's launch catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
)

var watches = []models.Product{
	{
		Name:        "Chronograph Orlinski Black Magic",
		Price:       decimal.RequireFromString("18200.00"),
		Img:         "/img/Classic-Fusion-Chronograph-Orlinski-Black-Magic-Soldier.png",
		Description: "El encuentro entre la relojería y la escultura...",
	},
	{
		Name:        "Unico Sailing Team",
		Price:       decimal.RequireFromString("25200.00"),
		Img:         "/img/big-bang-unicoo-sailing-team-soldier-shot.png",
		Description: "By developing its own automatic chronograph movement, Hublot wanted it to be – like all of its creations – the first, different and unique.",
	},
	{
		Name:        "Unico Magic Gold",
		Price:       decimal.RequireFromString("44500.00"),
		Img:         "/img/Square-Bang-Unico-Magic-Gold-42-mm-Soldier.png",
		Description: "Scratch-proof gold had never existed before, so Hublot invented it...",
	},
	{
		Name:        "MP-15 Takashi Murakami Tourbillon Sapphire Rainbow",
		Price:       decimal.RequireFromString("389000.00"),
		Img:         "/img/reloj-flor.png",
		Description: "A disruptive and unconventional shape",
	},
	{
		Name:        "Big Bang Integral Time Soldier",
		Price:       decimal.RequireFromString("13100.00"),
		Img:         "/img/big-bang-integral-time-onlytitanium-38-mm-soldier.png",
		Description: "The true aesthetic signature of the Big Bang Integrated, the integrated bracelet, returns to give the watch its strength.",
	},
	{
		Name:        "Big Bang Unico Novak-Djokovic",
		Price:       decimal.RequireFromString("52700.00"),
		Img:         "/img/big-bang-unico-Novak-Djokovic-42-mm-soldier_0.png",
		Description: "This new timepiece is a horological manifesto from Hublot. Innovative, smashing convention with case and bezel in a composite of the tennis GOAT Novak Djokovic",
	},
	{
		Name:        "Big Bang Unico Ice Bang",
		Price:       decimal.RequireFromString("52700.00"),
		Img:         "/img/Big-Bang-Unico-Yellow-Magic.png",
		Description: "By developing its own automatic chronograph movement, Hublot wanted it to be like all of its creations: the first, different and unique.",
	},
	{
		Name:        "Spirit of Big Bang Tourbillon Sorai Soldier",
		Price:       decimal.RequireFromString("110000.00"),
		Img:         "/img/spirit-of-big-bang-tourbillon-sorai-42-mm-soldier_0.png",
		Description: "Hublot introduces the Spirit of Big Bang SORAI, a 30-piece limited-edition created in support of SORAI",
	},
}

// Watches returns a fresh copy of the launch catalog without ids.
func Watches() []models.Product {
	return append([]models.Product{}, watches...)
}

// Seed writes the launch catalog to repo and returns the stored products
// with their assigned ids.
func Seed(ctx context.Context, repo repository.ProductRepository) ([]models.Product, error) {
	stored := make([]models.Product, 0, len(watches))
	for _, w := range Watches() {
		p := w
		if err := repo.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("create product %q: %w", p.Name, err)
		}
		stored = append(stored, p)
	}
	return stored, nil
}
