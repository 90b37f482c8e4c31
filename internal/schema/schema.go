// Package schema reconciles inconsistently named source columns into the
// master complaint-record schema shared by every cleaned dataset.
package schema

// Canonical field names of the master complaint schema. Every unified
// record carries exactly these columns, in this order.
const (
	FieldDataFato          = "data_fato"
	FieldAnoFato           = "ano_fato"
	FieldUFOcorrencia      = "uf_ocorrencia"
	FieldMunicipio         = "municipio_ocorrencia"
	FieldGrupoVulneravel   = "grupo_vulneravel"
	FieldTipoViolacao      = "tipo_violacao"
	FieldVitimaSexo        = "vitima_sexo"
	FieldVitimaFaixaEtaria = "vitima_faixa_etaria"
	FieldVitimaRacaCor     = "vitima_raca_cor"
	FieldVitimaOrientacao  = "vitima_orientacao_sexual"
)

// Master returns the ordered master schema. A fresh slice is returned so
// callers cannot mutate the canonical order.
func Master() []string {
	return []string{
		FieldDataFato,
		FieldAnoFato,
		FieldUFOcorrencia,
		FieldMunicipio,
		FieldGrupoVulneravel,
		FieldTipoViolacao,
		FieldVitimaSexo,
		FieldVitimaFaixaEtaria,
		FieldVitimaRacaCor,
		FieldVitimaOrientacao,
	}
}

// IsMasterField reports whether name is one of the master schema fields.
func IsMasterField(name string) bool {
	for _, f := range Master() {
		if f == name {
			return true
		}
	}
	return false
}
