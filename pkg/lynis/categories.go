package lynis

import (
	"strconv"
	"strings"

	"github.com/user/lynisparse/pkg/logger"
)

// extractor fills one category of r. Extractors only read doc and only write
// their own field, so they may run concurrently.
type extractor struct {
	category string
	run      func(doc *Document, r *ParsedReport)
}

var extractors = []extractor{
	{"metadata", func(d *Document, r *ParsedReport) { r.Metadata = extractMetadata(d) }},
	{"score", func(d *Document, r *ParsedReport) { r.Score = extractScore(d) }},
	{"critical_issues", func(d *Document, r *ParsedReport) { r.CriticalIssues = extractCriticalIssues(d) }},
	{"security_status", func(d *Document, r *ParsedReport) { r.SecurityStatus = extractSecurityStatus(d) }},
	{"boot_and_services", func(d *Document, r *ParsedReport) { r.BootAndServices = extractBoot(d) }},
	{"ssh_hardening", func(d *Document, r *ParsedReport) { r.SSHHardening = extractSSH(d) }},
	{"kernel_hardening", func(d *Document, r *ParsedReport) { r.KernelHardening = extractKernel(d) }},
	{"authentication", func(d *Document, r *ParsedReport) { r.Authentication = extractAuthentication(d) }},
	{"filesystem", func(d *Document, r *ParsedReport) { r.Filesystem = extractFilesystem(d) }},
	{"network", func(d *Document, r *ParsedReport) { r.Network = extractNetwork(d) }},
	{"services", func(d *Document, r *ParsedReport) { r.Services = extractServices(d) }},
	{"installed_software", func(d *Document, r *ParsedReport) { r.InstalledSoftware = extractSoftware(d) }},
	{"logging", func(d *Document, r *ParsedReport) { r.Logging = extractLogging(d) }},
	{"insecure_services", func(d *Document, r *ParsedReport) { r.InsecureServices = extractInsecureServices(d) }},
	{"banners", func(d *Document, r *ParsedReport) { r.Banners = extractBanners(d) }},
	{"scheduled_tasks", func(d *Document, r *ParsedReport) { r.ScheduledTasks = extractScheduledTasks(d) }},
	{"accounting", func(d *Document, r *ParsedReport) { r.Accounting = extractAccounting(d) }},
	{"time_sync", func(d *Document, r *ParsedReport) { r.TimeSync = TimeSync{Configured: d.HasSection("Time and Synchronization")} }},
	{"crypto", func(d *Document, r *ParsedReport) { r.Crypto = extractCrypto(d) }},
	{"virtualization", func(d *Document, r *ParsedReport) { r.Virtualization = Detection{Detected: d.HasSection("Virtualization")} }},
	{"containers", func(d *Document, r *ParsedReport) { r.Containers = Detection{Detected: d.HasSection("Containers")} }},
	{"file_permissions", func(d *Document, r *ParsedReport) { r.FilePermissions = extractFilePermissions(d) }},
	{"home_directories", func(d *Document, r *ParsedReport) { r.HomeDirectories = extractHomeDirectories(d) }},
	{"hardening_tools", func(d *Document, r *ParsedReport) { r.HardeningTools = extractHardeningTools(d) }},
	{"warnings", func(d *Document, r *ParsedReport) { r.Warnings = ParseList(d.ListSection(WarningList), WarningList) }},
	{"suggestions", func(d *Document, r *ParsedReport) { r.Suggestions = ParseList(d.ListSection(SuggestionList), SuggestionList) }},
}

var (
	ruleLynisVersion     = PatternRule("lynis_version", `Program version:[ \t]*(\S+)`)
	ruleOS               = PatternRule("os", `Operating system:[ \t]*(.+)`)
	ruleOSName           = PatternRule("os_name", `Operating system name:[ \t]*(.+)`)
	ruleOSVersion        = PatternRule("os_version", `Operating system version:[ \t]*(.+)`)
	ruleKernelVersion    = PatternRule("kernel_version", `Kernel version:[ \t]*(.+)`)
	ruleHardwarePlatform = PatternRule("hardware_platform", `Hardware platform:[ \t]*(\S+)`)
	ruleHostname         = PatternRule("hostname", `Hostname:[ \t]*(\S+)`)
	ruleProfile          = PatternRule("profile", `Profiles:[ \t]*(.+)`)
	ruleLogFile          = PatternRule("log_file", `Log file:[ \t]*(.+)`)
	ruleReportFile       = PatternRule("report_file", `Report file:[ \t]*(.+)`)
)

func extractMetadata(d *Document) Metadata {
	var m Metadata
	all := d.All()
	all.Text(&m.LynisVersion, ruleLynisVersion)
	all.Text(&m.OS, ruleOS)
	all.Text(&m.OSName, ruleOSName)
	all.Text(&m.OSVersion, ruleOSVersion)
	all.Text(&m.KernelVersion, ruleKernelVersion)
	all.Text(&m.HardwarePlatform, ruleHardwarePlatform)
	all.Text(&m.Hostname, ruleHostname)
	all.Text(&m.Profile, ruleProfile)
	all.Text(&m.LogFile, ruleLogFile)
	all.Text(&m.ReportFile, ruleReportFile)
	return m
}

var (
	ruleHardeningIndex = PatternRule("hardening_index", `Hardening index[ \t]*:[ \t]*(\d+)`)
	ruleTestsPerformed = PatternRule("tests_performed", `Tests performed[ \t]*:[ \t]*(\d+)`)
	rulePluginsEnabled = PatternRule("plugins_enabled", `Plugins enabled[ \t]*:[ \t]*(\d+)`)
)

func extractScore(d *Document) Score {
	var s Score
	all := d.All()
	all.Int(&s.HardeningIndex, ruleHardeningIndex)
	all.Int(&s.TestsPerformed, ruleTestsPerformed)
	all.Int(&s.PluginsEnabled, rulePluginsEnabled)
	s.HardeningIndex = validIndex(s.HardeningIndex)
	return s
}

// validIndex drops a hardening index outside [0,100].
func validIndex(v *int) *int {
	if v != nil && (*v < 0 || *v > 100) {
		logger.Debugf("field hardening_index: %d out of range, omitted", *v)
		return nil
	}
	return v
}

var (
	ruleFirewall       = StatusRule("firewall", `Checking host based firewall`, `Checking firewall`)
	ruleAppArmor       = StatusRule("apparmor", `Checking AppArmor status`)
	ruleSELinux        = StatusRule("selinux", `Checking presence SELinux`, `Checking SELinux`)
	ruleMalwareScanner = StatusRule("malware_scanner", `Installed malware scanner`)
	ruleIDSIPS         = StatusRule("ids_ips", `Checking for IDS/IPS tooling`)
	ruleIntegrityTool  = StatusRule("file_integrity_tool", `Checking presence integrity tool`, `Checking integrity tool`)
	ruleAuditd         = StatusRule("auditd", `Checking auditd`)
)

func extractSecurityStatus(d *Document) SecurityStatus {
	var s SecurityStatus
	all := d.All()
	s.Firewall, _, _ = classifyFirewall(all)
	all.Status(&s.AppArmor, ruleAppArmor)
	all.Status(&s.SELinux, ruleSELinux)
	all.Status(&s.MalwareScanner, ruleMalwareScanner)
	all.Status(&s.IDSIPS, ruleIDSIPS)
	all.Status(&s.FileIntegrityTool, ruleIntegrityTool)
	all.Status(&s.Auditd, ruleAuditd)
	return s
}

const bootSection = "Boot and services"

var (
	ruleServiceManager  = StatusRule("service_manager", `Service Manager`)
	ruleUEFIBoot        = StatusRule("uefi_boot", `Checking UEFI boot`)
	ruleGrub            = StatusRule("grub", `Checking presence GRUB2`, `Checking presence GRUB`)
	ruleGrubPassword    = StatusRule("grub_password", `Checking for password protection`)
	ruleRunningServices = PatternRule("running_services", `found (\d+) running services`)
	ruleEnabledServices = PatternRule("enabled_services", `found (\d+) enabled services`)
)

func extractBoot(d *Document) BootAndServices {
	var b BootAndServices
	sec := d.Section(bootSection)
	sec.Status(&b.ServiceManager, ruleServiceManager)
	sec.Status(&b.UEFIBoot, ruleUEFIBoot)
	sec.Status(&b.Grub, ruleGrub)
	sec.Status(&b.GrubPassword, ruleGrubPassword)
	sec.Int(&b.RunningServices, ruleRunningServices)
	sec.Int(&b.EnabledServices, ruleEnabledServices)
	return b
}

func extractServices(d *Document) Services {
	var s Services
	sec := d.Section(bootSection)
	sec.Int(&s.RunningCount, ruleRunningServices)
	sec.Int(&s.EnabledCount, ruleEnabledServices)
	sec.Status(&s.ServiceManager, ruleServiceManager)
	return s
}

// Lynis 3.x prints "OpenSSH option", 2.x printed "SSH option".
var ruleSSHOption = PatternRule("ssh_option",
	`- OpenSSH option: (\w+)`+statusSuffix,
	`- SSH option: (\w+)`+statusSuffix,
)

func extractSSH(d *Document) []SSHOption {
	out := []SSHOption{}
	for _, m := range d.Section("SSH Support").MatchAll(ruleSSHOption) {
		status := strings.TrimSpace(m[2])
		out = append(out, SSHOption{
			Option: m[1],
			Status: status,
			Secure: status == "OK" || status == "NOT FOUND",
		})
	}
	return out
}

var ruleSysctl = PatternRule("sysctl", `- ([\w.]+)[ \t]+\(exp:[ \t]*([^)\n]+?)[ \t]*\)`+statusSuffix)

func extractKernel(d *Document) []KernelParameter {
	out := []KernelParameter{}
	for _, m := range d.Section("Kernel Hardening").MatchAll(ruleSysctl) {
		status := strings.TrimSpace(m[3])
		out = append(out, KernelParameter{
			Parameter: m[1],
			Expected:  m[2],
			Status:    status,
			Compliant: status == "OK",
		})
	}
	return out
}

var (
	rulePasswordMinAge     = StatusRule("password_min_age", `Checking user password aging \(minimum\)`, `User password aging \(minimum\)`)
	rulePasswordMaxAge     = StatusRule("password_max_age", `Checking user password aging \(maximum\)`, `User password aging \(maximum\)`)
	rulePAMStrength        = StatusRule("pam_strength_tools", `PAM password strength tools`)
	ruleNoPasswordAccounts = StatusRule("accounts_without_password", `Checking accounts without password`, `Accounts without password`)
	ruleFailedLogins       = StatusRule("failed_login_logging", `Logging failed login attempts`)
	ruleSudoers            = StatusRule("sudoers", `Checking sudoers file`, `sudoers file`)
	ruleSudoersPerms       = StatusRule("sudoers_permissions", `Check sudoers file permissions`, `Sudoers file\(s\) permissions`)
)

func extractAuthentication(d *Document) Authentication {
	var a Authentication
	sec := d.Section("Users, Groups and Authentication")
	sec.Status(&a.PasswordMinAge, rulePasswordMinAge)
	sec.Status(&a.PasswordMaxAge, rulePasswordMaxAge)
	sec.Status(&a.PAMStrengthTools, rulePAMStrength)
	sec.Status(&a.AccountsWithoutPassword, ruleNoPasswordAccounts)
	sec.Status(&a.FailedLoginLogging, ruleFailedLogins)
	sec.Status(&a.Sudoers, ruleSudoers)
	sec.Status(&a.SudoersPermissions, ruleSudoersPerms)
	return a
}

// mountPoints are checked for a dedicated partition, in this order.
var mountPoints = []string{"/home", "/tmp", "/var"}

var partitionRules = func() map[string]Rule {
	rules := make(map[string]Rule, len(mountPoints))
	for _, mp := range mountPoints {
		rules[mp] = StatusRule("separate_partitions"+mp, `Checking `+mp+` mount point`)
	}
	return rules
}()

var (
	ruleTmpSticky    = StatusRule("tmp_sticky_bit", `Checking /tmp sticky bit`)
	ruleVarTmpSticky = StatusRule("var_tmp_sticky_bit", `Checking /var/tmp sticky bit`)
	ruleACL          = StatusRule("acl_support", `Checking ACL support on root file system`, `ACL support root file system`)
)

func extractFilesystem(d *Document) Filesystem {
	fs := Filesystem{SeparatePartitions: map[string]bool{}}
	sec := d.Section("File systems")
	for _, mp := range mountPoints {
		// The audit tool reports SUGGESTION when the mount point is not a
		// separate partition.
		if v, ok := sec.Raw(partitionRules[mp]); ok {
			fs.SeparatePartitions[mp] = v != "SUGGESTION"
		}
	}
	sec.Flag(&fs.TmpStickyBit, ruleTmpSticky, "OK")
	sec.Flag(&fs.VarTmpStickyBit, ruleVarTmpSticky, "OK")
	sec.Status(&fs.ACLSupport, ruleACL)
	return fs
}

var (
	ruleIPv6        = StatusRule("ipv6_enabled", `Checking IPv6 configuration`)
	ruleNameserver  = PatternRule("nameserver", `Nameserver:[ \t]*(\S+)`+statusSuffix)
	ruleOpenPorts   = PatternRule("open_ports_count", `Found (\d+) ports?`)
	ruleDHCPClient  = StatusRule("dhcp_client", `Checking status DHCP client`)
	rulePromiscuous = StatusRule("promiscuous_mode", `Checking promiscuous interfaces`)
)

func extractNetwork(d *Document) Network {
	n := Network{Nameservers: []Nameserver{}}
	sec := d.Section("Networking", "Name services")
	sec.Flag(&n.IPv6Enabled, ruleIPv6, "ENABLED")
	for _, m := range sec.MatchAll(ruleNameserver) {
		n.Nameservers = append(n.Nameservers, Nameserver{IP: m[1], Status: strings.TrimSpace(m[2])})
	}
	sec.Int(&n.OpenPortsCount, ruleOpenPorts)
	sec.Status(&n.DHCPClient, ruleDHCPClient)
	sec.Status(&n.PromiscuousMode, rulePromiscuous)
	return n
}

var (
	ruleApache     = StatusRule("apache", `Checking Apache`)
	ruleNginx      = StatusRule("nginx", `Checking nginx`)
	ruleMySQL      = StatusRule("mysql", `MySQL process status`, `MySQL`)
	rulePostgreSQL = StatusRule("postgresql", `PostgreSQL processes status`, `PostgreSQL`)
	rulePHP        = StatusRule("php", `Checking PHP`)
)

func extractSoftware(d *Document) InstalledSoftware {
	var s InstalledSoftware
	web := d.Section("Software: webserver")
	web.Status(&s.Apache, ruleApache)
	web.Status(&s.Nginx, ruleNginx)

	db := d.Section("Databases")
	db.Status(&s.MySQL, ruleMySQL)
	db.Status(&s.PostgreSQL, rulePostgreSQL)
	s.DatabaseEngines = "none"
	if db != "" && !strings.Contains(string(db), "No database engines found") {
		s.DatabaseEngines = "found"
	}

	d.Section("PHP").Status(&s.PHP, rulePHP)
	if d.HasSection("Software: e-mail") {
		s.MailServer = "found"
	}
	return s
}

var (
	ruleLogDaemon      = StatusRule("log_daemon", `Checking for a running log daemon`)
	ruleSyslogNG       = StatusRule("syslog_ng", `Checking Syslog-NG status`)
	ruleSystemdJournal = StatusRule("systemd_journal", `Checking systemd journal status`)
	ruleRSyslog        = StatusRule("rsyslog", `Checking RSyslog status`)
	ruleLogrotate      = StatusRule("logrotate", `Checking logrotate presence`)
)

func extractLogging(d *Document) Logging {
	var l Logging
	sec := d.Section("Logging and files")
	sec.Status(&l.LogDaemon, ruleLogDaemon)
	sec.Status(&l.SyslogNG, ruleSyslogNG)
	sec.Status(&l.SystemdJournal, ruleSystemdJournal)
	sec.Status(&l.RSyslog, ruleRSyslog)
	sec.Status(&l.Logrotate, ruleLogrotate)
	return l
}

var ruleInetd = StatusRule("inetd", `Checking inetd status`)

func extractInsecureServices(d *Document) InsecureServices {
	var s InsecureServices
	d.Section("Insecure services").Status(&s.Inetd, ruleInetd)
	return s
}

var (
	ruleIssue           = StatusRule("issue", `/etc/issue`)
	ruleIssueContent    = StatusRule("issue_content", `/etc/issue contents`)
	ruleIssueNet        = StatusRule("issue_net", `/etc/issue\.net`)
	ruleIssueNetContent = StatusRule("issue_net_content", `/etc/issue\.net contents`)
)

func extractBanners(d *Document) Banners {
	var b Banners
	sec := d.Section("Banners and identification")
	sec.Status(&b.Issue, ruleIssue)
	sec.Status(&b.IssueContent, ruleIssueContent)
	sec.Status(&b.IssueNet, ruleIssueNet)
	sec.Status(&b.IssueNetContent, ruleIssueNetContent)
	return b
}

var (
	ruleCron = StatusRule("cron", `Checking crontab and cronjob files`, `Checking crontab/cronjob`)
	ruleAtd  = StatusRule("atd", `Checking atd status`)
)

func extractScheduledTasks(d *Document) ScheduledTasks {
	var t ScheduledTasks
	sec := d.Section("Scheduled tasks")
	sec.Status(&t.Cron, ruleCron)
	sec.Status(&t.Atd, ruleAtd)
	return t
}

var (
	ruleAccountingInfo = StatusRule("accounting", `Checking accounting information`)
	ruleSysstat        = StatusRule("sysstat", `Checking sysstat accounting data`)
)

func extractAccounting(d *Document) Accounting {
	var a Accounting
	sec := d.Section("Accounting")
	sec.Status(&a.Accounting, ruleAccountingInfo)
	sec.Status(&a.Sysstat, ruleSysstat)
	sec.Status(&a.Auditd, ruleAuditd)
	return a
}

var ruleSSLCerts = PatternRule("ssl_certs", `Checking for expired SSL certificates \[(\d+)/(\d+)\]`)

func extractCrypto(d *Document) Crypto {
	var c Crypto
	m := d.Section("Cryptography").Match(ruleSSLCerts)
	if m == nil {
		return c
	}
	if n, err := strconv.Atoi(m[1]); err == nil {
		c.ExpiredSSLCerts = &n
	}
	if n, err := strconv.Atoi(m[2]); err == nil {
		c.TotalSSLCerts = &n
	}
	return c
}

var ruleRootSSH = StatusRule("root_ssh", `/root/\.ssh`)

func extractFilePermissions(d *Document) FilePermissions {
	var p FilePermissions
	d.Section("File Permissions").Status(&p.RootSSH, ruleRootSSH)
	return p
}

var ruleShellHistory = StatusRule("shell_history", `Checking shell history files`)

func extractHomeDirectories(d *Document) HomeDirectories {
	var h HomeDirectories
	d.Section("Home directories").Status(&h.ShellHistory, ruleShellHistory)
	return h
}

var ruleCompiler = StatusRule("compiler", `Installed compiler\(s\)`)

func extractHardeningTools(d *Document) HardeningTools {
	var t HardeningTools
	d.Section("Hardening").Status(&t.Compiler, ruleCompiler)
	return t
}

// missingTools derives the list of absent security tooling from already
// extracted statuses, in a fixed order.
func missingTools(s SecurityStatus) []string {
	out := []string{}
	checks := []struct {
		name   string
		status string
		absent string
	}{
		{"malware_scanner", s.MalwareScanner, "not_found"},
		{"file_integrity", s.FileIntegrityTool, "not_found"},
		{"ids_ips", s.IDSIPS, "none"},
		{"auditd", s.Auditd, "not_found"},
		{"firewall", s.Firewall, "not_active"},
	}
	for _, c := range checks {
		if c.status == c.absent {
			out = append(out, c.name)
		}
	}
	return out
}
