package postgres

import (
	"context"

	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
)

// Literal reference-row and deletion values shared with the SQLite
// backend's repair phase (spec.md §4.F, §11) — both backends patch the
// same data, only the dialect of a handful of statements differs.
var (
	missingQualificacaoSocio = [][2]string{
		{"36", "Gerente-Delegado"},
	}
	missingMotivo = [][2]string{
		{"32", "DECURSO DE PRAZO DE INTERRUPCAO TEMPORARIA"},
		{"81", "SOLICITACAO DA ADMINISTRACAO TRIBUTARIA MUNICIPAL/ESTADUAL - SC"},
		{"93", "CNPJ - TITULAR BAIXADO"},
	}
	missingPais = [][2]string{
		{"008", "ABU DHABI"},
		{"009", "DIRCE"},
		{"015", "ALAND, ILHAS"},
		{"150", "JERSEY"},
		{"151", "CANARIAS, ILHAS"},
		{"200", "CURACAO"},
		{"321", "GUERNSEY"},
		{"359", "MAN, ILHA DE"},
		{"367", "INGLATERRA"},
		{"393", "JERSEY"},
		{"449", "MACEDONIA (ANTIGA REP. IUGOSLAVA)"},
		{"452", "MADEIRA, ILHA DA"},
		{"498", "MOLDAVIA"},
		{"678", "SAO TOME E PRINCIPE"},
		{"699", "SAO MARTINHO, ILHA DE (PARTE HOLANDESA)"},
		{"737", "SERVIA"},
		{"994", "AZERBAIJAO"},
	}
	deletedSimplesCnpjBasico = []string{
		"24417449", "24539162", "30721933", "30728066",
		"30760363", "30847991", "30857441", "30886793", "30972017",
	}
)

// PatchData runs the same idempotent repair phase as the SQLite
// backend, using ctid-based dedup and LPAD-based cod_pais padding in
// place of SQLite's rowid/substr equivalents (spec.md §4.F).
func (b *Backend) PatchData(ctx context.Context) error {
	logx.Task("APLICANDO CORREÇÕES NA BASE DE DADOS...")

	if err := b.insertMissingReferenceRows(ctx); err != nil {
		return err
	}

	if _, err := b.pool.Exec(ctx, `
		DELETE FROM empresa
		WHERE ctid IN (
			SELECT ctid FROM (
				SELECT ctid,
					ROW_NUMBER() OVER (
						PARTITION BY cnpj_basico
						ORDER BY CASE WHEN razao_social IS NOT NULL AND TRIM(razao_social) <> '' THEN 0 ELSE 1 END, ctid
					) AS rn
				FROM empresa
			) t
			WHERE t.rn > 1
		)`); err != nil {
		return ingesterr.WrapStructural("postgres.PatchData: dedup empresa", err)
	}

	if _, err := b.pool.Exec(ctx, `UPDATE estabelecimento SET cod_pais = NULL WHERE cod_pais = '0'`); err != nil {
		return ingesterr.WrapStructural("postgres.PatchData: null cod_pais", err)
	}

	if _, err := b.pool.Exec(ctx, `UPDATE empresa SET cod_porte = '00' WHERE cod_porte = ''`); err != nil {
		return ingesterr.WrapStructural("postgres.PatchData: default cod_porte", err)
	}

	if _, err := b.pool.Exec(ctx, `
		UPDATE estabelecimento
		SET cod_pais = LPAD(cod_pais, 3, '0')
		WHERE cod_pais IS NOT NULL AND LENGTH(TRIM(cod_pais)) = 2`); err != nil {
		return ingesterr.WrapStructural("postgres.PatchData: pad cod_pais", err)
	}

	if _, err := b.pool.Exec(ctx, `DELETE FROM simples WHERE cnpj_basico = ANY($1)`, deletedSimplesCnpjBasico); err != nil {
		return ingesterr.WrapStructural("postgres.PatchData: delete simples", err)
	}

	logx.Success("CORREÇÕES APLICADAS")
	return nil
}

func (b *Backend) insertMissingReferenceRows(ctx context.Context) error {
	for _, row := range missingQualificacaoSocio {
		if _, err := b.pool.Exec(ctx,
			`INSERT INTO qualificacao_socio (cod_qualificacao, nome_qualificacao) VALUES ($1, $2) ON CONFLICT (cod_qualificacao) DO NOTHING`,
			row[0], row[1]); err != nil {
			return ingesterr.WrapStructural("postgres.PatchData: qualificacao_socio", err)
		}
	}
	for _, row := range missingMotivo {
		if _, err := b.pool.Exec(ctx,
			`INSERT INTO motivo (cod_motivo, nome_motivo) VALUES ($1, $2) ON CONFLICT (cod_motivo) DO NOTHING`,
			row[0], row[1]); err != nil {
			return ingesterr.WrapStructural("postgres.PatchData: motivo", err)
		}
	}
	for _, row := range missingPais {
		if _, err := b.pool.Exec(ctx,
			`INSERT INTO pais (cod_pais, nome_pais) VALUES ($1, $2) ON CONFLICT (cod_pais) DO NOTHING`,
			row[0], row[1]); err != nil {
			return ingesterr.WrapStructural("postgres.PatchData: pais", err)
		}
	}
	return nil
}
