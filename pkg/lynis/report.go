package lynis

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Taxonomy lists the top-level categories of a ParsedReport in the order they
// are serialized.
var Taxonomy = []string{
	"metadata",
	"score",
	"critical_issues",
	"security_status",
	"boot_and_services",
	"ssh_hardening",
	"kernel_hardening",
	"authentication",
	"filesystem",
	"network",
	"services",
	"installed_software",
	"logging",
	"insecure_services",
	"banners",
	"scheduled_tasks",
	"accounting",
	"time_sync",
	"crypto",
	"virtualization",
	"containers",
	"file_permissions",
	"home_directories",
	"hardening_tools",
	"missing_tools",
	"warnings",
	"suggestions",
	"scan_timestamp",
}

// ParsedReport is the structured form of one audit report. Field order
// matches Taxonomy. A category the audited system did not exercise is left
// at its zero value and serializes as an empty mapping or list.
type ParsedReport struct {
	Metadata          Metadata           `json:"metadata" yaml:"metadata"`
	Score             Score              `json:"score" yaml:"score"`
	CriticalIssues    CriticalIssues     `json:"critical_issues" yaml:"critical_issues"`
	SecurityStatus    SecurityStatus     `json:"security_status" yaml:"security_status"`
	BootAndServices   BootAndServices    `json:"boot_and_services" yaml:"boot_and_services"`
	SSHHardening      []SSHOption        `json:"ssh_hardening" yaml:"ssh_hardening"`
	KernelHardening   []KernelParameter  `json:"kernel_hardening" yaml:"kernel_hardening"`
	Authentication    Authentication     `json:"authentication" yaml:"authentication"`
	Filesystem        Filesystem         `json:"filesystem" yaml:"filesystem"`
	Network           Network            `json:"network" yaml:"network"`
	Services          Services           `json:"services" yaml:"services"`
	InstalledSoftware InstalledSoftware  `json:"installed_software" yaml:"installed_software"`
	Logging           Logging            `json:"logging" yaml:"logging"`
	InsecureServices  InsecureServices   `json:"insecure_services" yaml:"insecure_services"`
	Banners           Banners            `json:"banners" yaml:"banners"`
	ScheduledTasks    ScheduledTasks     `json:"scheduled_tasks" yaml:"scheduled_tasks"`
	Accounting        Accounting         `json:"accounting" yaml:"accounting"`
	TimeSync          TimeSync           `json:"time_sync" yaml:"time_sync"`
	Crypto            Crypto             `json:"crypto" yaml:"crypto"`
	Virtualization    Detection          `json:"virtualization" yaml:"virtualization"`
	Containers        Detection          `json:"containers" yaml:"containers"`
	FilePermissions   FilePermissions    `json:"file_permissions" yaml:"file_permissions"`
	HomeDirectories   HomeDirectories    `json:"home_directories" yaml:"home_directories"`
	HardeningTools    HardeningTools     `json:"hardening_tools" yaml:"hardening_tools"`
	MissingTools      []string           `json:"missing_tools" yaml:"missing_tools"`
	Warnings          []Finding          `json:"warnings" yaml:"warnings"`
	Suggestions       SuggestionFindings `json:"suggestions" yaml:"suggestions"`
	ScanTimestamp     string             `json:"scan_timestamp" yaml:"scan_timestamp"`
}

// Metadata describes the audited host and the audit run.
type Metadata struct {
	LynisVersion     string `json:"lynis_version,omitempty" yaml:"lynis_version,omitempty"`
	OS               string `json:"os,omitempty" yaml:"os,omitempty"`
	OSName           string `json:"os_name,omitempty" yaml:"os_name,omitempty"`
	OSVersion        string `json:"os_version,omitempty" yaml:"os_version,omitempty"`
	KernelVersion    string `json:"kernel_version,omitempty" yaml:"kernel_version,omitempty"`
	HardwarePlatform string `json:"hardware_platform,omitempty" yaml:"hardware_platform,omitempty"`
	Hostname         string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Profile          string `json:"profile,omitempty" yaml:"profile,omitempty"`
	LogFile          string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	ReportFile       string `json:"report_file,omitempty" yaml:"report_file,omitempty"`
}

// Score holds the audit totals. HardeningIndex, when set, is within [0,100].
type Score struct {
	HardeningIndex *int `json:"hardening_index,omitempty" yaml:"hardening_index,omitempty"`
	TestsPerformed *int `json:"tests_performed,omitempty" yaml:"tests_performed,omitempty"`
	PluginsEnabled *int `json:"plugins_enabled,omitempty" yaml:"plugins_enabled,omitempty"`
}

// CriticalIssues is the fixed set of high-impact flags.
type CriticalIssues struct {
	RebootNeeded       bool `json:"reboot_needed" yaml:"reboot_needed"`
	VulnerablePackages bool `json:"vulnerable_packages" yaml:"vulnerable_packages"`
	NoFirewall         bool `json:"no_firewall" yaml:"no_firewall"`
	FirewallNoRules    bool `json:"firewall_no_rules" yaml:"firewall_no_rules"`
	WeakPasswordPolicy bool `json:"weak_password_policy" yaml:"weak_password_policy"`
}

// Count returns the number of raised flags.
func (c CriticalIssues) Count() int {
	n := 0
	for _, v := range []bool{c.RebootNeeded, c.VulnerablePackages, c.NoFirewall, c.FirewallNoRules, c.WeakPasswordPolicy} {
		if v {
			n++
		}
	}
	return n
}

type SecurityStatus struct {
	Firewall          string `json:"firewall,omitempty" yaml:"firewall,omitempty"`
	AppArmor          string `json:"apparmor,omitempty" yaml:"apparmor,omitempty"`
	SELinux           string `json:"selinux,omitempty" yaml:"selinux,omitempty"`
	MalwareScanner    string `json:"malware_scanner,omitempty" yaml:"malware_scanner,omitempty"`
	IDSIPS            string `json:"ids_ips,omitempty" yaml:"ids_ips,omitempty"`
	FileIntegrityTool string `json:"file_integrity_tool,omitempty" yaml:"file_integrity_tool,omitempty"`
	Auditd            string `json:"auditd,omitempty" yaml:"auditd,omitempty"`
}

type BootAndServices struct {
	ServiceManager  string `json:"service_manager,omitempty" yaml:"service_manager,omitempty"`
	UEFIBoot        string `json:"uefi_boot,omitempty" yaml:"uefi_boot,omitempty"`
	Grub            string `json:"grub,omitempty" yaml:"grub,omitempty"`
	GrubPassword    string `json:"grub_password,omitempty" yaml:"grub_password,omitempty"`
	RunningServices *int   `json:"running_services,omitempty" yaml:"running_services,omitempty"`
	EnabledServices *int   `json:"enabled_services,omitempty" yaml:"enabled_services,omitempty"`
}

// SSHOption is one checked sshd_config option.
type SSHOption struct {
	Option string `json:"option" yaml:"option"`
	Status string `json:"status" yaml:"status"`
	Secure bool   `json:"secure" yaml:"secure"`
}

// KernelParameter is one sysctl value compared against its expected value.
type KernelParameter struct {
	Parameter string `json:"parameter" yaml:"parameter"`
	Expected  string `json:"expected" yaml:"expected"`
	Status    string `json:"status" yaml:"status"`
	Compliant bool   `json:"compliant" yaml:"compliant"`
}

type Authentication struct {
	PasswordMinAge          string `json:"password_min_age,omitempty" yaml:"password_min_age,omitempty"`
	PasswordMaxAge          string `json:"password_max_age,omitempty" yaml:"password_max_age,omitempty"`
	PAMStrengthTools        string `json:"pam_strength_tools,omitempty" yaml:"pam_strength_tools,omitempty"`
	AccountsWithoutPassword string `json:"accounts_without_password,omitempty" yaml:"accounts_without_password,omitempty"`
	FailedLoginLogging      string `json:"failed_login_logging,omitempty" yaml:"failed_login_logging,omitempty"`
	Sudoers                 string `json:"sudoers,omitempty" yaml:"sudoers,omitempty"`
	SudoersPermissions      string `json:"sudoers_permissions,omitempty" yaml:"sudoers_permissions,omitempty"`
}

type Filesystem struct {
	// SeparatePartitions maps a mount point to whether it is on its own
	// partition.
	SeparatePartitions map[string]bool `json:"separate_partitions" yaml:"separate_partitions"`
	TmpStickyBit       *bool           `json:"tmp_sticky_bit,omitempty" yaml:"tmp_sticky_bit,omitempty"`
	VarTmpStickyBit    *bool           `json:"var_tmp_sticky_bit,omitempty" yaml:"var_tmp_sticky_bit,omitempty"`
	ACLSupport         string          `json:"acl_support,omitempty" yaml:"acl_support,omitempty"`
}

// Nameserver is one configured resolver and its check status.
type Nameserver struct {
	IP     string `json:"ip" yaml:"ip"`
	Status string `json:"status" yaml:"status"`
}

type Network struct {
	IPv6Enabled     *bool        `json:"ipv6_enabled,omitempty" yaml:"ipv6_enabled,omitempty"`
	Nameservers     []Nameserver `json:"nameservers" yaml:"nameservers"`
	OpenPortsCount  *int         `json:"open_ports_count,omitempty" yaml:"open_ports_count,omitempty"`
	DHCPClient      string       `json:"dhcp_client,omitempty" yaml:"dhcp_client,omitempty"`
	PromiscuousMode string       `json:"promiscuous_mode,omitempty" yaml:"promiscuous_mode,omitempty"`
}

type Services struct {
	RunningCount   *int   `json:"running_count,omitempty" yaml:"running_count,omitempty"`
	EnabledCount   *int   `json:"enabled_count,omitempty" yaml:"enabled_count,omitempty"`
	ServiceManager string `json:"service_manager,omitempty" yaml:"service_manager,omitempty"`
}

type InstalledSoftware struct {
	Apache          string `json:"apache,omitempty" yaml:"apache,omitempty"`
	Nginx           string `json:"nginx,omitempty" yaml:"nginx,omitempty"`
	MySQL           string `json:"mysql,omitempty" yaml:"mysql,omitempty"`
	PostgreSQL      string `json:"postgresql,omitempty" yaml:"postgresql,omitempty"`
	DatabaseEngines string `json:"database_engines,omitempty" yaml:"database_engines,omitempty"`
	PHP             string `json:"php,omitempty" yaml:"php,omitempty"`
	MailServer      string `json:"mail_server,omitempty" yaml:"mail_server,omitempty"`
}

type Logging struct {
	LogDaemon      string `json:"log_daemon,omitempty" yaml:"log_daemon,omitempty"`
	SyslogNG       string `json:"syslog_ng,omitempty" yaml:"syslog_ng,omitempty"`
	SystemdJournal string `json:"systemd_journal,omitempty" yaml:"systemd_journal,omitempty"`
	RSyslog        string `json:"rsyslog,omitempty" yaml:"rsyslog,omitempty"`
	Logrotate      string `json:"logrotate,omitempty" yaml:"logrotate,omitempty"`
}

type InsecureServices struct {
	Inetd string `json:"inetd,omitempty" yaml:"inetd,omitempty"`
}

type Banners struct {
	Issue           string `json:"issue,omitempty" yaml:"issue,omitempty"`
	IssueContent    string `json:"issue_content,omitempty" yaml:"issue_content,omitempty"`
	IssueNet        string `json:"issue_net,omitempty" yaml:"issue_net,omitempty"`
	IssueNetContent string `json:"issue_net_content,omitempty" yaml:"issue_net_content,omitempty"`
}

type ScheduledTasks struct {
	Cron string `json:"cron,omitempty" yaml:"cron,omitempty"`
	Atd  string `json:"atd,omitempty" yaml:"atd,omitempty"`
}

type Accounting struct {
	Accounting string `json:"accounting,omitempty" yaml:"accounting,omitempty"`
	Sysstat    string `json:"sysstat,omitempty" yaml:"sysstat,omitempty"`
	Auditd     string `json:"auditd,omitempty" yaml:"auditd,omitempty"`
}

// Detection records whether a report section was present at all. The audit
// tool only prints headings for these categories.
type Detection struct {
	Detected bool `json:"detected,omitzero" yaml:"detected,omitempty"`
}

type TimeSync struct {
	Configured bool `json:"configured,omitzero" yaml:"configured,omitempty"`
}

type Crypto struct {
	ExpiredSSLCerts *int `json:"expired_ssl_certs,omitempty" yaml:"expired_ssl_certs,omitempty"`
	TotalSSLCerts   *int `json:"total_ssl_certs,omitempty" yaml:"total_ssl_certs,omitempty"`
}

type FilePermissions struct {
	RootSSH string `json:"root_ssh,omitempty" yaml:"root_ssh,omitempty"`
}

type HomeDirectories struct {
	ShellHistory string `json:"shell_history,omitempty" yaml:"shell_history,omitempty"`
}

type HardeningTools struct {
	Compiler string `json:"compiler,omitempty" yaml:"compiler,omitempty"`
}

// Finding is one warning or suggestion record.
type Finding struct {
	TestID      string    `json:"test_id" yaml:"test_id"`
	Description string    `json:"description" yaml:"description"`
	Solution    string    `json:"solution" yaml:"solution"`
	Details     string    `json:"details,omitempty" yaml:"details,omitempty"`
	URL         string    `json:"url" yaml:"url"`
	Articles    []Article `json:"articles,omitempty" yaml:"articles,omitempty"`
}

// SuggestionFindings is the suggestion list. Unlike warnings, every
// suggestion carries a details key, empty or not.
type SuggestionFindings []Finding

// suggestionRecord is Finding with details always encoded.
type suggestionRecord struct {
	TestID      string    `json:"test_id" yaml:"test_id"`
	Description string    `json:"description" yaml:"description"`
	Solution    string    `json:"solution" yaml:"solution"`
	Details     string    `json:"details" yaml:"details"`
	URL         string    `json:"url" yaml:"url"`
	Articles    []Article `json:"articles,omitempty" yaml:"articles,omitempty"`
}

func (s SuggestionFindings) records() []suggestionRecord {
	out := make([]suggestionRecord, len(s))
	for i, f := range s {
		out[i] = suggestionRecord(f)
	}
	return out
}

func (s SuggestionFindings) MarshalJSONTo(enc *jsontext.Encoder) error {
	if s == nil {
		return enc.WriteToken(jsontext.Null)
	}
	return json.MarshalEncode(enc, s.records())
}

func (s SuggestionFindings) MarshalYAML() (any, error) {
	if s == nil {
		return nil, nil
	}
	return s.records(), nil
}

// Article is a titled reference link attached to a suggestion.
type Article struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// newReport returns a report whose list and map fields are non-nil, so that
// absent categories serialize as empty values rather than null.
func newReport() *ParsedReport {
	return &ParsedReport{
		SSHHardening:    []SSHOption{},
		KernelHardening: []KernelParameter{},
		Filesystem:      Filesystem{SeparatePartitions: map[string]bool{}},
		Network:         Network{Nameservers: []Nameserver{}},
		MissingTools:    []string{},
		Warnings:        []Finding{},
		Suggestions:     []Finding{},
	}
}
