package config

type Report struct {
	Output string `env:"REPORT_OUTPUT" envDefault:"summary_report.csv"`
}
