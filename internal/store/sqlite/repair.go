package sqlite

import (
	"context"

	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
)

// missingQualificacaoSocio, missingMotivo and missingPais are reference
// rows the source archives never ship but that estabelecimento/
// socio rows can point to. Literal values ported from the original
// project's db_patch.py (SPEC_FULL.md §11).
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
	// deletedSimplesCnpjBasico are cnpj_basico values known to carry
	// corrupt simples rows in every monthly extract; deleting them is a
	// standing fixup, not month-specific.
	deletedSimplesCnpjBasico = []string{
		"24417449", "24539162", "30721933", "30728066",
		"30760363", "30847991", "30857441", "30886793", "30972017",
	}
)

// PatchData runs the idempotent repair phase: backfilling missing
// reference rows, deduping empresa by cnpj_basico, normalizing
// cod_pais/cod_porte, and deleting known-bad simples rows (spec.md
// §4.F).
func (b *Backend) PatchData(ctx context.Context) error {
	logx.Task("APLICANDO CORREÇÕES NA BASE DE DADOS...")

	if err := b.insertMissingReferenceRows(ctx); err != nil {
		return err
	}

	if _, err := b.db.ExecContext(ctx, `
		DELETE FROM empresa
		WHERE rowid IN (
			SELECT rowid FROM (
				SELECT rowid,
					ROW_NUMBER() OVER (
						PARTITION BY cnpj_basico
						ORDER BY CASE WHEN razao_social IS NOT NULL AND TRIM(razao_social) <> '' THEN 0 ELSE 1 END, rowid
					) AS rn
				FROM empresa
			) t
			WHERE t.rn > 1
		)`); err != nil {
		return ingesterr.WrapStructural("sqlite.PatchData: dedup empresa", err)
	}

	if _, err := b.db.ExecContext(ctx, `UPDATE estabelecimento SET cod_pais = NULL WHERE cod_pais = '0'`); err != nil {
		return ingesterr.WrapStructural("sqlite.PatchData: null cod_pais", err)
	}

	if _, err := b.db.ExecContext(ctx, `UPDATE empresa SET cod_porte = '00' WHERE cod_porte = ''`); err != nil {
		return ingesterr.WrapStructural("sqlite.PatchData: default cod_porte", err)
	}

	if _, err := b.db.ExecContext(ctx, `
		UPDATE estabelecimento
		SET cod_pais = substr('000' || cod_pais, -3)
		WHERE cod_pais IS NOT NULL AND LENGTH(TRIM(cod_pais)) = 2`); err != nil {
		return ingesterr.WrapStructural("sqlite.PatchData: pad cod_pais", err)
	}

	if err := b.deleteKnownBadSimplesRows(ctx); err != nil {
		return err
	}

	logx.Success("CORREÇÕES APLICADAS")
	return nil
}

func (b *Backend) insertMissingReferenceRows(ctx context.Context) error {
	for _, row := range missingQualificacaoSocio {
		if _, err := b.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO qualificacao_socio (cod_qualificacao, nome_qualificacao) VALUES (?, ?)`,
			row[0], row[1]); err != nil {
			return ingesterr.WrapStructural("sqlite.PatchData: qualificacao_socio", err)
		}
	}
	for _, row := range missingMotivo {
		if _, err := b.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO motivo (cod_motivo, nome_motivo) VALUES (?, ?)`,
			row[0], row[1]); err != nil {
			return ingesterr.WrapStructural("sqlite.PatchData: motivo", err)
		}
	}
	for _, row := range missingPais {
		if _, err := b.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO pais (cod_pais, nome_pais) VALUES (?, ?)`,
			row[0], row[1]); err != nil {
			return ingesterr.WrapStructural("sqlite.PatchData: pais", err)
		}
	}
	return nil
}

func (b *Backend) deleteKnownBadSimplesRows(ctx context.Context) error {
	placeholders := make([]any, len(deletedSimplesCnpjBasico))
	marks := make([]byte, 0, len(deletedSimplesCnpjBasico)*2)
	for i, v := range deletedSimplesCnpjBasico {
		placeholders[i] = v
		if i > 0 {
			marks = append(marks, ',')
		}
		marks = append(marks, '?')
	}
	_, err := b.db.ExecContext(ctx, "DELETE FROM simples WHERE cnpj_basico IN ("+string(marks)+")", placeholders...)
	if err != nil {
		return ingesterr.WrapStructural("sqlite.PatchData: delete simples", err)
	}
	return nil
}
