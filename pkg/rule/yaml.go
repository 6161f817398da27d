package rule

// yamlAgentRule is one entry of user_agent_parsers.
type yamlAgentRule struct {
	Regex             string `yaml:"regex"`
	RegexFlag         string `yaml:"regex_flag,omitempty"`
	FamilyReplacement string `yaml:"family_replacement,omitempty"`
	V1Replacement     string `yaml:"v1_replacement,omitempty"`
	V2Replacement     string `yaml:"v2_replacement,omitempty"`
	V3Replacement     string `yaml:"v3_replacement,omitempty"`
}

// yamlOSRule is one entry of os_parsers.
type yamlOSRule struct {
	Regex           string `yaml:"regex"`
	RegexFlag       string `yaml:"regex_flag,omitempty"`
	OSReplacement   string `yaml:"os_replacement,omitempty"`
	OSV1Replacement string `yaml:"os_v1_replacement,omitempty"`
	OSV2Replacement string `yaml:"os_v2_replacement,omitempty"`
	OSV3Replacement string `yaml:"os_v3_replacement,omitempty"`
	OSV4Replacement string `yaml:"os_v4_replacement,omitempty"`
}

// yamlDeviceRule is one entry of device_parsers.
type yamlDeviceRule struct {
	Regex             string `yaml:"regex"`
	RegexFlag         string `yaml:"regex_flag,omitempty"`
	DeviceReplacement string `yaml:"device_replacement,omitempty"`
	BrandReplacement  string `yaml:"brand_replacement,omitempty"`
	ModelReplacement  string `yaml:"model_replacement,omitempty"`
}

// yamlCatalogue is the top-level structure of a regexes.yaml file.
type yamlCatalogue struct {
	UserAgentParsers []yamlAgentRule  `yaml:"user_agent_parsers"`
	OSParsers        []yamlOSRule     `yaml:"os_parsers"`
	DeviceParsers    []yamlDeviceRule `yaml:"device_parsers"`
}

// yamlTestCase is one entry of a test_cases fixture file. Nullable fields
// ("~") decode as empty strings.
type yamlTestCase struct {
	UserAgent  string `yaml:"user_agent_string"`
	Family     string `yaml:"family"`
	Major      string `yaml:"major,omitempty"`
	Minor      string `yaml:"minor,omitempty"`
	Patch      string `yaml:"patch,omitempty"`
	PatchMinor string `yaml:"patch_minor,omitempty"`
	Brand      string `yaml:"brand,omitempty"`
	Model      string `yaml:"model,omitempty"`
}

// yamlFixtureFile is the top-level structure of a fixture file.
type yamlFixtureFile struct {
	TestCases []yamlTestCase `yaml:"test_cases"`
}
