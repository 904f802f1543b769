//go:build wireinject
// +build wireinject

package main

import (
	"smartkheti_backend/internal/analytics"
	"smartkheti_backend/internal/app"
	"smartkheti_backend/internal/auth"
	"smartkheti_backend/internal/category"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/detection"
	"smartkheti_backend/internal/filestorage"
	"smartkheti_backend/internal/jobs"
	"smartkheti_backend/internal/marketplace"
	"smartkheti_backend/internal/news"
	"smartkheti_backend/internal/platform/cache"
	"smartkheti_backend/internal/platform/database"
	platformes "smartkheti_backend/internal/platform/elasticsearch"
	"smartkheti_backend/internal/platform/logger"
	"smartkheti_backend/internal/reports"
	"smartkheti_backend/internal/shared"
	"smartkheti_backend/internal/user"
	"smartkheti_backend/internal/weather"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform
		logger.New,
		database.NewGORM,
		cache.New,
		platformes.NewClient,
		filestorage.NewFromConfig,
		wire.Bind(new(filestorage.Storage), new(*filestorage.FileStorageService)),
		provideMaxUploadBytes,

		// Auth
		auth.NewJWTService,
		wire.Bind(new(shared.TokenService), new(*auth.JWTService)),
		auth.NewInMemoryBlocklistService,
		wire.Bind(new(auth.TokenBlocklistService), new(*auth.InMemoryBlocklistService)),
		auth.NewHandler,

		// Users
		user.NewGORMRepository,
		user.NewLogOTPSender,
		wire.Bind(new(user.OTPSender), new(*user.LogOTPSender)),
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(shared.UserProvider), new(*user.ServiceImplementation)),
		wire.Bind(new(weather.ProfileProvider), new(*user.ServiceImplementation)),
		wire.Bind(new(jobs.OTPPurger), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Marketplace
		category.NewGORMRepository,
		category.NewService,
		category.NewHandler,
		marketplace.NewGORMRepository,
		marketplace.NewSearchIndex,
		marketplace.NewService,
		wire.Bind(new(marketplace.Service), new(*marketplace.ServiceImplementation)),
		marketplace.NewHandler,

		// Disease detection, analytics and reports
		detection.NewGORMRepository,
		detection.NewClassifierFromConfig,
		detection.NewService,
		wire.Bind(new(detection.Service), new(*detection.ServiceImplementation)),
		wire.Bind(new(analytics.HistoryProvider), new(*detection.ServiceImplementation)),
		detection.NewHandler,
		analytics.NewHandler,
		wire.Bind(new(reports.RecordSource), new(detection.Repository)),
		reports.NewService,
		reports.NewHandler,

		// Weather and news
		weather.NewGORMRepository,
		weather.NewOpenMeteoClientFromConfig,
		wire.Bind(new(weather.ForecastClient), new(*weather.OpenMeteoClient)),
		weather.NewService,
		weather.NewHandler,
		news.NewNewsAPIClientFromConfig,
		wire.Bind(new(news.Fetcher), new(*news.NewsAPIClient)),
		news.NewService,
		wire.Bind(new(jobs.NewsRefresher), new(news.Service)),
		news.NewHandler,

		// Jobs
		jobs.NewOTPPurgeJob,
		jobs.NewNewsRefreshJob,
		jobs.NewJobScheduler,

		// Application
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}

