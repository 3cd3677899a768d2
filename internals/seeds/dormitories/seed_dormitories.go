package dormitories

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"dormitory_backend/internals/features/housing/dto"
)

type Importer interface {
	ImportStructure(ctx context.Context, payload dto.DormitoryStructureExport) (*dto.ImportResult, error)
}

// SeedDormitoriesFromJSON membaca file berformat export struktur lalu import
// (upsert by name, jadi aman dijalankan berulang).
func SeedDormitoriesFromJSON(ctx context.Context, imp Importer, filePath string) (*dto.ImportResult, error) {
	logrus.WithField("file", filePath).Info("📥 Membaca file seed asrama")

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("baca file seed: %w", err)
	}

	var payload dto.DormitoryStructureExport
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode file seed: %w", err)
	}

	res, err := imp.ImportStructure(ctx, payload)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"created": res.Created,
		"updated": res.Updated,
		"rooms":   res.Rooms,
	}).Info("✅ Seed asrama selesai")
	return res, nil
}
