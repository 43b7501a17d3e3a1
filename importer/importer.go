// Package importer 批量导入：对行做一次 fold，产出 {created, skipped, conflicts}。
// 文件解析（CSV/XLSX）不在这层，调用方喂已经拆好的行。
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"keycabinet/db"
	"keycabinet/models"
)

type PersonRow struct {
	Name       string `json:"name"`
	Company    string `json:"company"`
	ExternalID string `json:"externalId"`
	PIN        string `json:"pin"`
}

type KeyRow struct {
	Description  string `json:"description"`
	LocationName string `json:"locationName"`
}

type Result struct {
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Conflicts []string `json:"conflicts"`
}

type PersonStore interface {
	FindPersonByExternalID(ctx context.Context, externalID string) (*models.Person, error)
	RegisterPerson(ctx context.Context, in db.RegisterPersonInput) (*models.Person, error)
}

type KeyStore interface {
	KeyExistsByDescription(ctx context.Context, description string) (bool, error)
	FindOrCreateLocation(ctx context.Context, name string) (*models.Location, error)
	CreateKey(ctx context.Context, description, locationID string) (*models.Key, error)
}

// ImportPersons 同号同名 = 已导入过，静默跳过；同号不同名 = 冲突，记录但不改数据。
// PIN 不合规的行也算冲突（注册入口统一校验，导入不例外）。
func ImportPersons(ctx context.Context, store PersonStore, rows []PersonRow) (Result, error) {
	var res Result
	res.Conflicts = []string{}
	for _, row := range rows {
		externalID := strings.TrimSpace(row.ExternalID)
		name := strings.TrimSpace(row.Name)
		pin := strings.TrimSpace(row.PIN)
		if externalID == "" || name == "" || pin == "" {
			continue // 关键列缺失的行直接忽略
		}

		existing, err := store.FindPersonByExternalID(ctx, externalID)
		if err != nil && !errors.Is(err, db.ErrPersonNotFound) {
			return res, err
		}
		if existing != nil {
			if existing.Name != name {
				res.Conflicts = append(res.Conflicts,
					fmt.Sprintf("external id %s: registered as %q, sheet says %q; nothing changed", externalID, existing.Name, name))
			}
			res.Skipped++
			continue
		}

		_, err = store.RegisterPerson(ctx, db.RegisterPersonInput{
			Name:       name,
			Company:    strings.TrimSpace(row.Company),
			ExternalID: externalID,
			RawPIN:     pin,
		})
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, db.ErrPINFormat):
			res.Conflicts = append(res.Conflicts,
				fmt.Sprintf("external id %s: %v", externalID, err))
			res.Skipped++
		case errors.Is(err, db.ErrDuplicateExternalID):
			// 和并发导入撞了，当作已存在
			res.Skipped++
		default:
			return res, err
		}
	}
	return res, nil
}

// ImportKeys 描述已存在的行跳过；地点名没见过就自动建一个活跃地点。
func ImportKeys(ctx context.Context, store KeyStore, rows []KeyRow) (Result, error) {
	var res Result
	res.Conflicts = []string{}
	for _, row := range rows {
		description := strings.TrimSpace(row.Description)
		locationName := strings.TrimSpace(row.LocationName)
		if description == "" || locationName == "" {
			continue
		}

		exists, err := store.KeyExistsByDescription(ctx, description)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}

		loc, err := store.FindOrCreateLocation(ctx, locationName)
		if err != nil {
			return res, err
		}
		if _, err := store.CreateKey(ctx, description, loc.ID); err != nil {
			if errors.Is(err, db.ErrDuplicateName) {
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Created++
	}
	return res, nil
}
