package catalog

// schemaTargets is the literal CNPJ schema: six small reference tables
// (inline PK, loaded first), the two primary entities whose PK is
// deferred to the repair phase, two fact tables keyed by cnpj_basico,
// and the derived secondary-CNAE table. Column order, types, keys and
// indexes are ported unchanged from the original project's
// db/schema.py (see SPEC_FULL.md §11).
var schemaTargets = []Target{
	{
		Name:       "cnae",
		SourceStem: "Cnaes",
		Columns: []Column{
			{Name: "cod_cnae", Type: "VARCHAR(7) PRIMARY KEY"},
			{Name: "nome_cnae", Type: "VARCHAR(200) NOT NULL"},
		},
	},
	{
		Name:       "motivo",
		SourceStem: "Motivos",
		Columns: []Column{
			{Name: "cod_motivo", Type: "VARCHAR(2) PRIMARY KEY"},
			{Name: "nome_motivo", Type: "VARCHAR(100) NOT NULL"},
		},
	},
	{
		Name:       "municipio",
		SourceStem: "Municipios",
		Columns: []Column{
			{Name: "cod_municipio", Type: "VARCHAR(4) PRIMARY KEY"},
			{Name: "nome_municipio", Type: "VARCHAR(60) NOT NULL"},
		},
	},
	{
		Name:       "natureza_juridica",
		SourceStem: "Naturezas",
		Columns: []Column{
			{Name: "cod_natureza", Type: "VARCHAR(4) PRIMARY KEY"},
			{Name: "nome_natureza", Type: "VARCHAR(200) NOT NULL"},
		},
	},
	{
		Name:       "pais",
		SourceStem: "Paises",
		Columns: []Column{
			{Name: "cod_pais", Type: "VARCHAR(3) PRIMARY KEY"},
			{Name: "nome_pais", Type: "VARCHAR(60) NOT NULL"},
		},
	},
	{
		Name:       "qualificacao_socio",
		SourceStem: "Qualificacoes",
		Columns: []Column{
			{Name: "cod_qualificacao", Type: "VARCHAR(2) PRIMARY KEY"},
			{Name: "nome_qualificacao", Type: "VARCHAR(200) NOT NULL"},
		},
	},
	{
		Name:       "empresa",
		SourceStem: "Empresas",
		Columns: []Column{
			{Name: "cnpj_basico", Type: "VARCHAR(8)"},
			{Name: "razao_social", Type: "VARCHAR(200)"},
			{Name: "cod_natureza_juridica", Type: "VARCHAR(4) NOT NULL"},
			{Name: "cod_qualificacao_responsavel", Type: "VARCHAR(2) NOT NULL"},
			{Name: "capital_social", Type: "NUMERIC(16,2) NOT NULL"},
			{Name: "cod_porte", Type: "VARCHAR(2)"},
			{Name: "ente_federativo_responsavel", Type: "VARCHAR(100)"},
		},
		PrimaryKey: []string{"cnpj_basico"},
		ForeignKeys: []ForeignKey{
			{Columns: []string{"cod_natureza_juridica"}, RefTable: "natureza_juridica", RefColumns: []string{"cod_natureza"}},
			{Columns: []string{"cod_qualificacao_responsavel"}, RefTable: "qualificacao_socio", RefColumns: []string{"cod_qualificacao"}},
		},
		Indexes: []Index{
			{Name: "idx_empresa_cnpj", Columns: []string{"cnpj_basico"}},
			{Name: "idx_empresa_razao_social", Columns: []string{"razao_social"}},
			{Name: "idx_empresa_natureza", Columns: []string{"cod_natureza_juridica"}},
			{Name: "idx_empresa_porte", Columns: []string{"cod_porte"}},
		},
	},
	{
		Name:       "estabelecimento",
		SourceStem: "Estabelecimentos",
		Columns: []Column{
			{Name: "cnpj_basico", Type: "VARCHAR(8) NOT NULL"},
			{Name: "cnpj_ordem", Type: "VARCHAR(4) NOT NULL"},
			{Name: "cnpj_dv", Type: "VARCHAR(2) NOT NULL"},
			{Name: "matriz_filial", Type: "VARCHAR(1) NOT NULL"},
			{Name: "nome_fantasia", Type: "VARCHAR(60)"},
			{Name: "cod_situacao_cadastral", Type: "VARCHAR(2) NOT NULL"},
			{Name: "data_situacao_cadastral", Type: "DATE"},
			{Name: "cod_motivo_situacao_cadastral", Type: "VARCHAR(2) NOT NULL"},
			{Name: "nome_cidade_exterior", Type: "VARCHAR(60)"},
			{Name: "cod_pais", Type: "VARCHAR(3)"},
			{Name: "data_inicio_atividade", Type: "DATE NOT NULL"},
			{Name: "cod_cnae_principal", Type: "VARCHAR(7) NOT NULL"},
			{Name: "cod_cnae_secundario", Type: "TEXT"},
			{Name: "tipo_logradouro", Type: "VARCHAR(20)"},
			{Name: "logradouro", Type: "VARCHAR(60)"},
			{Name: "numero", Type: "VARCHAR(6)"},
			{Name: "complemento", Type: "VARCHAR(200)"},
			{Name: "bairro", Type: "VARCHAR(60)"},
			{Name: "cep", Type: "VARCHAR(8)"},
			{Name: "uf", Type: "VARCHAR(2) NOT NULL"},
			{Name: "cod_municipio", Type: "VARCHAR(4)"},
			{Name: "ddd_telefone_1", Type: "VARCHAR(4)"},
			{Name: "telefone_1", Type: "VARCHAR(10)"},
			{Name: "ddd_telefone_2", Type: "VARCHAR(4)"},
			{Name: "telefone_2", Type: "VARCHAR(10)"},
			{Name: "ddd_fax", Type: "VARCHAR(4)"},
			{Name: "fax", Type: "VARCHAR(10)"},
			{Name: "email", Type: "TEXT"},
			{Name: "situacao_especial", Type: "VARCHAR(100)"},
			{Name: "data_situacao_especial", Type: "DATE"},
		},
		PrimaryKey: []string{"cnpj_basico", "cnpj_ordem", "cnpj_dv"},
		ForeignKeys: []ForeignKey{
			{Columns: []string{"cnpj_basico"}, RefTable: "empresa", RefColumns: []string{"cnpj_basico"}},
			{Columns: []string{"cod_cnae_principal"}, RefTable: "cnae", RefColumns: []string{"cod_cnae"}},
			{Columns: []string{"cod_municipio"}, RefTable: "municipio", RefColumns: []string{"cod_municipio"}},
			{Columns: []string{"cod_pais"}, RefTable: "pais", RefColumns: []string{"cod_pais"}},
			{Columns: []string{"cod_motivo_situacao_cadastral"}, RefTable: "motivo", RefColumns: []string{"cod_motivo"}},
		},
		Indexes: []Index{
			{Name: "idx_estab_empresa", Columns: []string{"cnpj_basico"}},
			{Name: "idx_estab_nome_fantasia", Columns: []string{"nome_fantasia"}},
			{Name: "idx_estab_cnae_principal", Columns: []string{"cod_cnae_principal"}},
			{Name: "idx_estab_data_inicio", Columns: []string{"data_inicio_atividade"}},
			{Name: "idx_estab_data_situacao", Columns: []string{"data_situacao_cadastral"}},
			{Name: "idx_estab_municipio", Columns: []string{"cod_municipio"}},
			{Name: "idx_estab_uf_municipio", Columns: []string{"uf", "cod_municipio"}},
			{Name: "idx_estab_situacao", Columns: []string{"cod_situacao_cadastral"}},
		},
	},
	{
		Name:       "simples",
		SourceStem: "Simples",
		Columns: []Column{
			{Name: "cnpj_basico", Type: "VARCHAR(8)"},
			{Name: "opcao_simples", Type: "VARCHAR(1)"},
			{Name: "data_opcao_simples", Type: "DATE"},
			{Name: "data_exclusao_simples", Type: "DATE"},
			{Name: "opcao_mei", Type: "VARCHAR(1)"},
			{Name: "data_opcao_mei", Type: "DATE"},
			{Name: "data_exclusao_mei", Type: "DATE"},
		},
		ForeignKeys: []ForeignKey{
			{Columns: []string{"cnpj_basico"}, RefTable: "empresa", RefColumns: []string{"cnpj_basico"}},
		},
		Indexes: []Index{
			{Name: "idx_simples_empresa", Columns: []string{"cnpj_basico"}},
		},
	},
	{
		Name:       "socio",
		SourceStem: "Socios",
		Columns: []Column{
			{Name: "cnpj_basico", Type: "VARCHAR(8) NOT NULL"},
			{Name: "identificador_socio", Type: "VARCHAR(1) NOT NULL"},
			{Name: "nome_socio", Type: "VARCHAR(200)"},
			{Name: "cnpj_cpf_socio", Type: "VARCHAR(14)"},
			{Name: "cod_qualificacao_socio", Type: "VARCHAR(2) NOT NULL"},
			{Name: "data_entrada_sociedade", Type: "DATE NOT NULL"},
			{Name: "cod_pais", Type: "VARCHAR(3)"},
			{Name: "cpf_representante_legal", Type: "VARCHAR(11)"},
			{Name: "nome_representante_legal", Type: "VARCHAR(100)"},
			{Name: "cod_qualificacao_representante_legal", Type: "VARCHAR(2)"},
			{Name: "cod_faixa_etaria", Type: "VARCHAR(1) NOT NULL"},
		},
		ForeignKeys: []ForeignKey{
			{Columns: []string{"cnpj_basico"}, RefTable: "empresa", RefColumns: []string{"cnpj_basico"}},
			{Columns: []string{"cod_pais"}, RefTable: "pais", RefColumns: []string{"cod_pais"}},
			{Columns: []string{"cod_qualificacao_socio"}, RefTable: "qualificacao_socio", RefColumns: []string{"cod_qualificacao"}},
			{Columns: []string{"cod_qualificacao_representante_legal"}, RefTable: "qualificacao_socio", RefColumns: []string{"cod_qualificacao"}},
		},
		Indexes: []Index{
			{Name: "idx_socio_empresa", Columns: []string{"cnpj_basico"}},
			{Name: "idx_socio_cpf_cnpj", Columns: []string{"cnpj_cpf_socio"}},
			{Name: "idx_socio_nome", Columns: []string{"nome_socio"}},
		},
	},
	{
		Name:       "estabelecimento_cnae_sec",
		SourceStem: "Estabelecimentos",
		Derived:    true,
		Columns: []Column{
			{Name: "cnpj_basico", Type: "VARCHAR(8) NOT NULL"},
			{Name: "cnpj_ordem", Type: "VARCHAR(4) NOT NULL"},
			{Name: "cnpj_dv", Type: "VARCHAR(2) NOT NULL"},
			{Name: "cod_cnae", Type: "VARCHAR(7) NOT NULL"},
		},
		ForeignKeys: []ForeignKey{
			{Columns: []string{"cnpj_basico", "cnpj_ordem", "cnpj_dv"}, RefTable: "estabelecimento", RefColumns: []string{"cnpj_basico", "cnpj_ordem", "cnpj_dv"}},
			{Columns: []string{"cod_cnae"}, RefTable: "cnae", RefColumns: []string{"cod_cnae"}},
		},
		Indexes: []Index{
			{Name: "idx_cnae_sec_estab", Columns: []string{"cnpj_basico", "cnpj_ordem", "cnpj_dv"}},
		},
	},
}
