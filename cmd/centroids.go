package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dadosbr/segdata/internal/frame"
	"github.com/dadosbr/segdata/internal/geo"
)

var centroidsShapefile string

var centroidsCmd = &cobra.Command{
	Use:   "centroids",
	Short: "Extract municipality centroids from the IBGE mesh",
	Long:  "Reads an IBGE municipal mesh shapefile and writes a centroid table (id_municipio, nome, latitude, longitude) usable for map joins against the final tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := discoverPaths()
		if err != nil {
			return err
		}
		if err := paths.EnsureStaging(); err != nil {
			return err
		}

		shpPath := centroidsShapefile
		if shpPath == "" {
			shpPath = filepath.Join(paths.Raw, "ibge", "BR_Municipios.shp")
		}

		centroids, err := geo.ReadCentroids(shpPath)
		if err != nil {
			return err
		}

		out := frame.New([]string{"id_municipio", "nome", "latitude", "longitude"})
		for _, c := range centroids {
			out.AppendRow([]string{
				c.ID, c.Name,
				geo.FormatCoord(c.Lat), geo.FormatCoord(c.Lon),
			})
		}

		dest := filepath.Join(paths.Staging, "centroides_municipios.csv")
		if err := frame.WriteFile(out, dest); err != nil {
			return err
		}
		fmt.Printf("wrote %d centroids to %s\n", out.NumRows(), dest)
		return nil
	},
}

func init() {
	centroidsCmd.Flags().StringVar(&centroidsShapefile, "shapefile", "", "path to the municipal mesh shapefile (default dados_brutos/ibge/BR_Municipios.shp)")
	rootCmd.AddCommand(centroidsCmd)
}
