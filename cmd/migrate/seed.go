package main

import (
	"fmt"
	"os"

	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/erp/procurement/internal/infrastructure/seed"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func (c *cli) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load tax codes, suppliers, products and prices from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()
			data, err := seed.Parse(f)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(c.log, gormlogger.Warn))
			if err != nil {
				return err
			}
			defer db.Close()

			// one file loads atomically
			return db.DB.WithContext(cmd.Context()).Transaction(func(tx *gorm.DB) error {
				loader := seed.NewLoader(seed.Repositories{
					Products:    persistence.NewGormProductRepository(tx),
					TaxCodes:    persistence.NewGormTaxCodeRepository(tx),
					Suppliers:   persistence.NewGormSupplierRepository(tx),
					Assignments: persistence.NewGormAssignmentRepository(tx),
					Prices:      persistence.NewGormPriceListRepository(tx),
				}, c.log)
				_, err := loader.Load(cmd.Context(), data)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
