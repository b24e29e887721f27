package core

// TemplateColumns is the header of the downloadable import template.
var TemplateColumns = []string{
	"NO_KK", "ALAMAT", "WILAYAH", "NAMA_LENGKAP", "NIK", "JENIS_KELAMIN",
	"TEMPAT_LAHIR", "TGL_LAHIR", "HUBUNGAN", "STATUS_GEREJAWI",
	"ALAMAT_DOMISILI", "STATUS_PERNIKAHAN", "NOMOR_TELEPON", "EMAIL",
	"PEKERJAAN", "GOL_DARAH", "CATATAN_PELAYANAN",
}

// TemplateFileName is the download name of the import template, without extension.
const TemplateFileName = "Template_Import_Jemaat"

// ImportTemplate returns the import template: the header and two sample
// members of one household.
func ImportTemplate() *Sheet {
	const (
		kk      = "3275000000000001"
		address = "Jl. Contoh Alamat No. 1, Cibitung"
	)
	return &Sheet{
		Name:   "Template_Import",
		Header: TemplateColumns,
		Rows: [][]string{
			{kk, address, string(SectorA), "Budi Santoso", "3275123456780001", string(GenderMale),
				"Jakarta", "1980-01-31", string(RelationshipHead), string(ChurchConfirmed),
				"", string(MaritalMarried), "", "", "", "", ""},
			{kk, address, string(SectorA), "Siti Aminah", "3275123456780002", string(GenderFemale),
				"Bekasi", "1985-05-20", string(RelationshipSpouse), string(ChurchConfirmed),
				"", string(MaritalMarried), "", "", "", "", ""},
		},
	}
}
