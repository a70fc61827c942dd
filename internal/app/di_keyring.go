package app

import (
	"fmt"

	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
	keyringRepository "github.com/allisson/ticketbox/internal/keyring/repository"
	keyringService "github.com/allisson/ticketbox/internal/keyring/service"
	"github.com/allisson/ticketbox/internal/pii"
)

// KeyMaterialRepository returns the key material repository instance.
func (c *Container) KeyMaterialRepository() (keyringService.KeyMaterialRepository, error) {
	c.domains.keyMaterialRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["keyMaterialRepo"] = fmt.Errorf("failed to get database for key material repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.domains.keyMaterialRepo = keyringRepository.NewMySQLKeyMaterialRepository(db)
		case "postgres":
			c.domains.keyMaterialRepo = keyringRepository.NewPostgreSQLKeyMaterialRepository(db)
		default:
			c.initErrors["keyMaterialRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["keyMaterialRepo"]; exists {
		return nil, err
	}
	return c.domains.keyMaterialRepo, nil
}

// KeyService returns the key hierarchy service instance.
func (c *Container) KeyService() (keyringService.KeyService, error) {
	c.domains.keyServiceInit.Do(func() {
		repo, err := c.KeyMaterialRepository()
		if err != nil {
			c.initErrors["keyService"] = err
			return
		}

		deriver, err := keyringService.NewKekDeriver([]byte(c.config.DeploymentSalt))
		if err != nil {
			c.initErrors["keyService"] = fmt.Errorf("invalid deployment salt: %w", err)
			return
		}

		service, err := keyringService.NewKeyService(
			repo,
			keyringService.NewAEADManager(),
			deriver,
			c.SessionStore(),
			keyringDomain.Algorithm(c.config.WrapAlgorithm),
		)
		if err != nil {
			c.initErrors["keyService"] = fmt.Errorf("failed to create key service: %w", err)
			return
		}
		c.domains.keyService = service
	})
	if err, exists := c.initErrors["keyService"]; exists {
		return nil, err
	}
	return c.domains.keyService, nil
}

// Indexer returns the blind index generator instance.
func (c *Container) Indexer() (*pii.Indexer, error) {
	c.domains.indexerInit.Do(func() {
		indexer, err := pii.NewIndexer([]byte(c.config.BlindIndexKey))
		if err != nil {
			c.initErrors["indexer"] = fmt.Errorf("invalid blind index key: %w", err)
			return
		}
		c.domains.indexer = indexer
	})
	if err, exists := c.initErrors["indexer"]; exists {
		return nil, err
	}
	return c.domains.indexer, nil
}
