package seeds

import (
	"context"

	"github.com/sirupsen/logrus"

	"dormitory_backend/internals/configs"
	"dormitory_backend/internals/seeds/dormitories"
)

const defaultDormitorySeed = "internals/seeds/dormitories/data_dormitories.json"

// RunAllSeeds jalan hanya kalau SEED_ON_START=true. File bisa diganti lewat SEED_DORMITORIES_FILE.
func RunAllSeeds(ctx context.Context, imp dormitories.Importer) {
	if !configs.GetEnvBool("SEED_ON_START", false) {
		return
	}

	//* Dormitories
	path := configs.GetEnv("SEED_DORMITORIES_FILE", defaultDormitorySeed)
	if _, err := dormitories.SeedDormitoriesFromJSON(ctx, imp, path); err != nil {
		logrus.WithError(err).Error("❌ Seed asrama gagal")
	}
}
