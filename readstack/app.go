package readstack

import (
	"github.com/shelfworks/readstack/readstack/database"
	"github.com/shelfworks/readstack/readstack/database/repositories"
	"github.com/shelfworks/readstack/readstack/services"
)

// App wires the progression core together: one explicitly constructed store
// handle, repositories over it, services over those. No package-level state.
type App struct {
	Cfg Config
	DB  *database.DB

	AccountRepo repositories.AccountRepository
	QuestRepo   repositories.QuestRepository
	BadgeRepo   repositories.BadgeRepository
	ShopRepo    repositories.ShopRepository
	ReadingRepo repositories.ReadingRepository

	Streaks     *services.StreakService
	Quests      *services.QuestService
	Badges      *services.BadgeService
	Shop        *services.ShopService
	Leaderboard *services.LeaderboardService
	Goals       *services.GoalService
	Tracker     *services.Tracker

	Version string
	Commit  string
}

func New(cfg Config, db *database.DB, version, commit string) *App {
	app := &App{
		Cfg:     cfg,
		DB:      db,
		Version: version,
		Commit:  commit,
	}

	bunDB := db.BunDB()
	app.AccountRepo = repositories.NewAccountRepository(bunDB)
	app.QuestRepo = repositories.NewQuestRepository(bunDB)
	app.BadgeRepo = repositories.NewBadgeRepository(bunDB)
	app.ShopRepo = repositories.NewShopRepository(bunDB)
	app.ReadingRepo = repositories.NewReadingRepository(bunDB)

	app.Quests = services.NewQuestService(app.QuestRepo)
	app.Badges = services.NewBadgeService(app.BadgeRepo)
	app.Tracker = services.NewTracker(app.Quests, app.Badges)
	app.Streaks = services.NewStreakService(app.AccountRepo, app.Tracker)
	app.Shop = services.NewShopService(app.ShopRepo, app.Tracker)
	app.Leaderboard = services.NewLeaderboardService(app.AccountRepo, app.ReadingRepo)
	app.Goals = services.NewGoalService(app.ReadingRepo)

	return app
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
