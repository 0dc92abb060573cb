package testutil

// KotlinLangProject is a minimal project and VCS root declaration.
const KotlinLangProject = `
project "KotlinLangOrg" {
  name    = "kotlinlang.org"
  version = "0.1.0"
}

vcs_root "KotlinLangOrg" {
  url    = "https://github.com/JetBrains/kotlin-web-site.git"
  branch = "refs/heads/master"
}
`

// E2ETestsHCL declares the "E2E tests" build type with a compose step
// followed by two script steps.
const E2ETestsHCL = `
build_type "E2ETests" {
  name      = "E2E tests"
  vcs_roots = ["KotlinLangOrg"]

  step "docker_compose" {
    file = "docker-compose-e2e-statics.yml"
  }

  step "script" {
    content = "docker-compose exec playwright yarn run test:visual:ci"
  }

  step "script" {
    content = "docker-compose down"
  }

  requirement "exists" {
    property = "docker.server.version"
  }

  requirement "contains" {
    property = "docker.server.osType"
    value    = "linux"
  }

  feature "pull_requests" {
    vcs_root           = "KotlinLangOrg"
    provider           = "github"
    auth_token         = "%github.oauth%"
    author_role_filter = "MEMBER_OR_COLLABORATOR"
  }
}
`

// StdlibReferenceHCL declares a build type with an absolute artifact
// dependency.
const StdlibReferenceHCL = `
build_type "BuildStdlibApiReference" {
  name           = "Stdlib Api reference"
  artifact_rules = ["latest-version.zip"]
  vcs_roots      = ["KotlinLangOrg"]

  dependency {
    build_type = absolute("Kotlin_KotlinRelease_1920_LibraryReferenceLatestDocs")

    artifacts {
      clean_destination = true
      rules             = ["latest-version.zip"]
    }
  }
}
`
