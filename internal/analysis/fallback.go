package analysis

import "fmt"

// fallbackAnalysis renders the deterministic local analysis used when the
// model provider is unavailable. It echoes the failing step and error into
// the same six-section shape the extractor expects, so the rest of the
// pipeline is unaffected by provider outages.
func fallbackAnalysis(rec FailureRecord) string {
	return fmt.Sprintf(`**Root Cause Analysis**: The pipeline failed at step %q with error: %s

**Immediate Workarounds**:
- Check if the step configuration is correct
- Verify that all required dependencies are available
- Review the step's Docker image and commands

**Proper Solutions**:
- Examine the build logs for specific error patterns
- Update pipeline configuration if needed
- Check for resource constraints or permissions issues

**Code Examples**:
`+"```yaml"+`
steps:
  - name: %s
    image: # verify this image exists and is accessible
    commands:
      # check these commands are correct
`+"```"+`

**Prevention**:
- Add validation steps before the failing step
- Use proper error handling in pipeline configuration
- Test pipeline changes in a development environment

**Vela Best Practices**:
- Use specific image tags instead of 'latest'
- Implement proper secret management
- Add adequate logging for debugging
`, rec.FailingStep, rec.ErrorMessage, rec.FailingStep)
}
