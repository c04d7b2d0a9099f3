package codes

// template is the downloadable example file: one code per line, no header.
const template = "ABCD-1234-EFGH\nIJKL-5678-MNOP\nQRST-9012-UVWX\n"

// TemplateFileName is the suggested download name for Template.
const TemplateFileName = "activation_codes_template.csv"

// Template returns the CSV template offered alongside format errors.
func Template() []byte {
	return []byte(template)
}
