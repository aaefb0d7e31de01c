package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hlcsatoreai/cryptointel/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type QueryService interface {
	TopAssets(ctx context.Context) ([]domain.AssetSnapshot, error)
	MarketStats(ctx context.Context) (*domain.MarketStats, error)
}

// StartTelegramBot exposes the screener over Telegram. Read-only: it
// queries the same service the HTTP API uses.
func StartTelegramBot(query QueryService) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/top", func(c tele.Context) error {
		assets, err := query.TopAssets(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching ranking: %v", err))
		}
		if len(assets) == 0 {
			return c.Send("No data yet, wait for the first refresh cycle")
		}
		var sb strings.Builder
		sb.WriteString("Top opportunities\n")
		for i, a := range assets {
			sb.WriteString(fmt.Sprintf("%d. %s  score %.1f  risk %s\n", i+1, a.Name, a.FinalScore, a.RiskLevel))
		}
		return c.Send(sb.String())
	})

	b.Handle("/market", func(c tele.Context) error {
		stats, err := query.MarketStats(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching market stats: %v", err))
		}
		if stats == nil {
			return c.Send("No market stats yet, wait for the first refresh cycle")
		}
		msg := fmt.Sprintf(
			"BTC Dominance: %.1f%%\nFear & Greed: %d\nMarket Risk: %s",
			stats.BTCDominance, stats.FearGreedIndex, stats.MarketRisk,
		)
		return c.Send(msg)
	})

	log.Println("Telegram bot started")
	go b.Start()
}
